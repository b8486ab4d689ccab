package categories

import (
	"context"
	"strings"
)

// Service applies business rules for categories.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, profileID, id int64) (*Category, error) {
	return s.repo.Get(ctx, profileID, id)
}

func (s *Service) List(ctx context.Context, profileID int64) ([]Category, error) {
	return s.repo.List(ctx, profileID)
}

func (s *Service) Create(ctx context.Context, profileID int64, req CreateCategoryRequest) (*Category, error) {
	return s.repo.Create(ctx, Category{
		ProfileID: profileID,
		Name:      strings.TrimSpace(req.Name),
		Color:     req.Color,
	})
}

func (s *Service) Update(ctx context.Context, profileID, id int64, req UpdateCategoryRequest) (*Category, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, profileID, id, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.Get(ctx, profileID, id)
}

func (s *Service) Delete(ctx context.Context, profileID, id int64) error {
	return s.repo.Delete(ctx, profileID, id)
}
