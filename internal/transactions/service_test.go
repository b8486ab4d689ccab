package transactions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/internal/parser"
)

type mockRepository struct {
	transactions map[int64]*Transaction
	nextID       int64

	createErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{transactions: make(map[int64]*Transaction), nextID: 1}
}

func (m *mockRepository) Get(_ context.Context, profileID, id int64) (*Transaction, error) {
	tx, ok := m.transactions[id]
	if !ok || tx.ProfileID != profileID {
		return nil, ErrNotFound
	}
	return tx, nil
}

func (m *mockRepository) List(_ context.Context, profileID int64, filters ListFilters) ([]Transaction, int, error) {
	var out []Transaction
	for _, tx := range m.transactions {
		if tx.ProfileID != profileID {
			continue
		}
		if filters.Type != "" && string(tx.Type) != filters.Type {
			continue
		}
		out = append(out, *tx)
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(_ context.Context, tx Transaction) (*Transaction, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	tx.ID = m.nextID
	m.nextID++
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = time.Now()
	m.transactions[tx.ID] = &tx
	return &tx, nil
}

func (m *mockRepository) Update(_ context.Context, profileID, id int64, updates map[string]interface{}) error {
	tx, ok := m.transactions[id]
	if !ok || tx.ProfileID != profileID {
		return ErrNotFound
	}
	if v, ok := updates["description"]; ok {
		tx.Description = v.(string)
	}
	if v, ok := updates["amount"]; ok {
		tx.Amount, _ = decimal.NewFromString(v.(string))
	}
	if v, ok := updates["type"]; ok {
		tx.Type = Type(v.(string))
	}
	return nil
}

func (m *mockRepository) Delete(_ context.Context, profileID, id int64) error {
	tx, ok := m.transactions[id]
	if !ok || tx.ProfileID != profileID {
		return ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

type stubParser struct {
	parsed []parser.ParsedTransaction
	err    error
}

func (s stubParser) Parse(context.Context, string) ([]parser.ParsedTransaction, error) {
	return s.parsed, s.err
}

func TestCreateTransaction(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	tx, err := svc.Create(context.Background(), 1, 10, CreateTransactionRequest{
		Type:        "EXPENSE",
		Amount:      "12.30",
		Description: "  groceries ",
		OccurredOn:  "2025-08-15",
	})
	require.NoError(t, err)
	assert.Equal(t, TypeExpense, tx.Type)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("12.30")))
	assert.Equal(t, "groceries", tx.Description)
	assert.Equal(t, 2025, tx.OccurredOn.Year())
}

func TestCreateRejectsBadAmounts(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	for _, amount := range []string{"", "abc", "0", "-5"} {
		_, err := svc.Create(context.Background(), 1, 10, CreateTransactionRequest{
			Type:        "EXPENSE",
			Amount:      amount,
			Description: "x",
			OccurredOn:  "2025-08-15",
		})
		assert.ErrorIsf(t, err, ErrInvalidAmount, "amount=%q", amount)
	}
}

func TestUpdateTransactionPartial(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	created, err := svc.Create(context.Background(), 1, 10, CreateTransactionRequest{
		Type: "EXPENSE", Amount: "5", Description: "lunch", OccurredOn: "2025-08-15",
	})
	require.NoError(t, err)

	desc := "dinner"
	updated, err := svc.Update(context.Background(), 1, created.ID, UpdateTransactionRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "dinner", updated.Description)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(5)))
}

func TestGetScopedToProfile(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	created, err := svc.Create(context.Background(), 1, 10, CreateTransactionRequest{
		Type: "INCOME", Amount: "100", Description: "pay", OccurredOn: "2025-08-01",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseDelegatesToParser(t *testing.T) {
	parsed := []parser.ParsedTransaction{{Type: "EXPENSE", Amount: "4.50", Description: "coffee", Date: "2025-08-30"}}
	svc := NewService(newMockRepository(), stubParser{parsed: parsed})

	out, err := svc.Parse(context.Background(), "coffee 4.50")
	require.NoError(t, err)
	assert.Equal(t, parsed, out)

	svc = NewService(newMockRepository(), stubParser{err: parser.ErrInvalidResponse})
	_, err = svc.Parse(context.Background(), "garbage")
	assert.ErrorIs(t, err, parser.ErrInvalidResponse)

	svc = NewService(newMockRepository(), nil)
	_, err = svc.Parse(context.Background(), "coffee")
	assert.Error(t, err)
}

func TestCreateSurfacesRepositoryError(t *testing.T) {
	repo := newMockRepository()
	repo.createErr = errors.New("connection reset")
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), 1, 10, CreateTransactionRequest{
		Type: "EXPENSE", Amount: "5", Description: "x", OccurredOn: "2025-08-15",
	})
	assert.Error(t, err)
}
