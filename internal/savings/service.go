package savings

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("amount must be a positive decimal")

// Service applies business rules for savings goals.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, profileID, id int64) (*Goal, error) {
	return s.repo.Get(ctx, profileID, id)
}

func (s *Service) List(ctx context.Context, profileID int64) ([]Goal, error) {
	return s.repo.List(ctx, profileID)
}

func (s *Service) Create(ctx context.Context, profileID int64, req CreateGoalRequest) (*Goal, error) {
	target, err := parseAmount(req.TargetAmount)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, Goal{
		ProfileID:    profileID,
		Name:         strings.TrimSpace(req.Name),
		AssetType:    AssetType(req.AssetType),
		TargetAmount: target,
	})
}

func (s *Service) Update(ctx context.Context, profileID, id int64, req UpdateGoalRequest) (*Goal, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.AssetType != nil {
		updates["asset_type"] = *req.AssetType
	}
	if req.TargetAmount != nil {
		target, err := parseAmount(*req.TargetAmount)
		if err != nil {
			return nil, err
		}
		updates["target_amount"] = target.String()
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

func (s *Service) Deposit(ctx context.Context, profileID, id int64, rawAmount string) (*Goal, error) {
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return nil, err
	}
	return s.repo.Adjust(ctx, profileID, id, amount)
}

func (s *Service) Withdraw(ctx context.Context, profileID, id int64, rawAmount string) (*Goal, error) {
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return nil, err
	}
	return s.repo.Adjust(ctx, profileID, id, amount.Neg())
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}
