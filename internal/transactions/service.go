package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/parser"
)

// ErrInvalidAmount is returned when an amount is not a positive decimal.
var ErrInvalidAmount = errors.New("amount must be a positive decimal")

// Parser turns free text into candidate transactions.
type Parser interface {
	Parse(ctx context.Context, text string) ([]parser.ParsedTransaction, error)
}

type Service struct {
	repo   Repository
	parser Parser
}

func NewService(repo Repository, p Parser) *Service {
	return &Service{repo: repo, parser: p}
}

func (s *Service) Create(ctx context.Context, profileID, createdBy int64, req CreateTransactionRequest) (*Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	occurredOn, err := time.Parse("2006-01-02", req.OccurredOn)
	if err != nil {
		return nil, fmt.Errorf("parse occurred_on: %w", err)
	}

	tx := Transaction{
		ProfileID:   profileID,
		Type:        Type(req.Type),
		Amount:      amount,
		Description: strings.TrimSpace(req.Description),
		CategoryID:  req.CategoryID,
		OccurredOn:  occurredOn,
		CreatedBy:   createdBy,
	}
	created, err := s.repo.Create(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, profileID, id int64) (*Transaction, error) {
	return s.repo.Get(ctx, profileID, id)
}

func (s *Service) List(ctx context.Context, profileID int64, filters ListFilters) ([]Transaction, int, error) {
	return s.repo.List(ctx, profileID, filters)
}

func (s *Service) Update(ctx context.Context, profileID, id int64, req UpdateTransactionRequest) (*Transaction, error) {
	updates := make(map[string]interface{})
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			return nil, err
		}
		updates["amount"] = amount.String()
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.OccurredOn != nil {
		occurredOn, err := time.Parse("2006-01-02", *req.OccurredOn)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_on: %w", err)
		}
		updates["occurred_on"] = occurredOn
	}

	if len(updates) == 0 {
		return s.repo.Get(ctx, profileID, id)
	}
	if err := s.repo.Update(ctx, profileID, id, updates); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return s.repo.Get(ctx, profileID, id)
}

func (s *Service) Delete(ctx context.Context, profileID, id int64) error {
	return s.repo.Delete(ctx, profileID, id)
}

// Parse sends free text to the generative parser and returns candidate
// transactions. Nothing is persisted; the client reviews and submits the
// candidates through Create.
func (s *Service) Parse(ctx context.Context, text string) ([]parser.ParsedTransaction, error) {
	if s.parser == nil {
		return nil, errors.New("text parsing not configured")
	}
	return s.parser.Parse(ctx, text)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !amount.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return amount, nil
}
