package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pocketledger/pocketledger/internal/ability"
)

// ErrLastAdmin is returned when an operation would leave a profile with no
// ADMIN member.
var ErrLastAdmin = errors.New("profile must keep at least one admin")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateProfileRequest, ownerID int64) (*Profile, error) {
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	profile, err := s.repo.CreateWithOwner(ctx, strings.TrimSpace(req.Name), currency, ownerID)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

func (s *Service) List(ctx context.Context, accountID int64) ([]ProfileWithRole, error) {
	return s.repo.ListForAccount(ctx, accountID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Profile, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProfileRequest) (*Profile, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Currency != nil {
		updates["currency"] = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListMembers(ctx context.Context, profileID int64) ([]Member, error) {
	return s.repo.ListMembers(ctx, profileID)
}

// UpdateMember changes a member's permission. Demoting the last remaining
// ADMIN is rejected so the profile never becomes unmanageable.
func (s *Service) UpdateMember(ctx context.Context, profileID, accountID int64, req UpdateMemberRequest) error {
	role, ok := ability.ParseRole(req.Permission)
	if !ok {
		return fmt.Errorf("unknown permission %q", req.Permission)
	}
	if role != ability.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx, profileID, accountID); err != nil {
			return err
		}
	}
	return s.repo.UpdateMemberRole(ctx, profileID, accountID, role)
}

// RemoveMember deletes a membership. Removing the last ADMIN is rejected.
func (s *Service) RemoveMember(ctx context.Context, profileID, accountID int64) error {
	if err := s.ensureAnotherAdmin(ctx, profileID, accountID); err != nil {
		return err
	}
	return s.repo.RemoveMember(ctx, profileID, accountID)
}

func (s *Service) ensureAnotherAdmin(ctx context.Context, profileID, accountID int64) error {
	members, err := s.repo.ListMembers(ctx, profileID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.Role == ability.RoleAdmin && m.AccountID != accountID {
			return nil
		}
	}
	return ErrLastAdmin
}
