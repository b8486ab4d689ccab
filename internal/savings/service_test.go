package savings

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	goals  map[int64]*Goal
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{goals: make(map[int64]*Goal), nextID: 1}
}

func (m *mockRepository) Get(_ context.Context, profileID, id int64) (*Goal, error) {
	g, ok := m.goals[id]
	if !ok || g.ProfileID != profileID {
		return nil, ErrNotFound
	}
	return g, nil
}

func (m *mockRepository) List(_ context.Context, profileID int64) ([]Goal, error) {
	var out []Goal
	for _, g := range m.goals {
		if g.ProfileID == profileID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *mockRepository) Create(_ context.Context, g Goal) (*Goal, error) {
	for _, existing := range m.goals {
		if existing.ProfileID == g.ProfileID && existing.Name == g.Name {
			return nil, ErrAlreadyExists
		}
	}
	g.ID = m.nextID
	m.nextID++
	g.CurrentAmount = decimal.Zero
	g.CreatedAt = time.Now()
	g.UpdatedAt = time.Now()
	m.goals[g.ID] = &g
	return &g, nil
}

func (m *mockRepository) Update(_ context.Context, profileID, id int64, updates map[string]interface{}) error {
	g, ok := m.goals[id]
	if !ok || g.ProfileID != profileID {
		return ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		g.Name = v.(string)
	}
	if v, ok := updates["asset_type"]; ok {
		g.AssetType = AssetType(v.(string))
	}
	if v, ok := updates["target_amount"]; ok {
		g.TargetAmount, _ = decimal.NewFromString(v.(string))
	}
	return nil
}

func (m *mockRepository) Delete(_ context.Context, profileID, id int64) error {
	g, ok := m.goals[id]
	if !ok || g.ProfileID != profileID {
		return ErrNotFound
	}
	delete(m.goals, id)
	return nil
}

func (m *mockRepository) Adjust(_ context.Context, profileID, id int64, delta decimal.Decimal) (*Goal, error) {
	g, ok := m.goals[id]
	if !ok || g.ProfileID != profileID {
		return nil, ErrNotFound
	}
	next := g.CurrentAmount.Add(delta)
	if next.IsNegative() {
		return nil, ErrInsufficientFunds
	}
	g.CurrentAmount = next
	return g, nil
}

func TestCreateGoalStartsAtZero(t *testing.T) {
	svc := NewService(newMockRepository())

	g, err := svc.Create(context.Background(), 1, CreateGoalRequest{
		Name: " Emergency fund ", AssetType: "CASH", TargetAmount: "1000",
	})
	require.NoError(t, err)
	assert.Equal(t, "Emergency fund", g.Name)
	assert.Equal(t, AssetCash, g.AssetType)
	assert.True(t, g.CurrentAmount.IsZero())
	assert.True(t, g.TargetAmount.Equal(decimal.NewFromInt(1000)))
}

func TestDepositAndWithdraw(t *testing.T) {
	svc := NewService(newMockRepository())
	g, err := svc.Create(context.Background(), 1, CreateGoalRequest{
		Name: "Trip", AssetType: "DEPOSIT", TargetAmount: "500",
	})
	require.NoError(t, err)

	g, err = svc.Deposit(context.Background(), 1, g.ID, "200.50")
	require.NoError(t, err)
	assert.True(t, g.CurrentAmount.Equal(decimal.RequireFromString("200.50")))

	g, err = svc.Withdraw(context.Background(), 1, g.ID, "50")
	require.NoError(t, err)
	assert.True(t, g.CurrentAmount.Equal(decimal.RequireFromString("150.50")))
}

func TestWithdrawCannotGoNegative(t *testing.T) {
	svc := NewService(newMockRepository())
	g, err := svc.Create(context.Background(), 1, CreateGoalRequest{
		Name: "Trip", AssetType: "CASH", TargetAmount: "500",
	})
	require.NoError(t, err)

	_, err = svc.Deposit(context.Background(), 1, g.ID, "100")
	require.NoError(t, err)

	_, err = svc.Withdraw(context.Background(), 1, g.ID, "100.01")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestAdjustRejectsBadAmounts(t *testing.T) {
	svc := NewService(newMockRepository())
	g, err := svc.Create(context.Background(), 1, CreateGoalRequest{
		Name: "Trip", AssetType: "CASH", TargetAmount: "500",
	})
	require.NoError(t, err)

	for _, amount := range []string{"", "abc", "0", "-5"} {
		_, err := svc.Deposit(context.Background(), 1, g.ID, amount)
		assert.ErrorIsf(t, err, ErrInvalidAmount, "amount=%q", amount)
	}
}

func TestGoalScopedToProfile(t *testing.T) {
	svc := NewService(newMockRepository())
	g, err := svc.Create(context.Background(), 1, CreateGoalRequest{
		Name: "Trip", AssetType: "CASH", TargetAmount: "500",
	})
	require.NoError(t, err)

	_, err = svc.Deposit(context.Background(), 2, g.ID, "10")
	assert.ErrorIs(t, err, ErrNotFound)
}
