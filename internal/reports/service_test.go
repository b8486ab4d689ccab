package reports

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	totals     Totals
	byCategory []CategoryTotals
	byMonth    []MonthTotals

	totalsCalls int
}

func (s *stubRepository) Totals(context.Context, int64, string, string) (Totals, error) {
	s.totalsCalls++
	return s.totals, nil
}

func (s *stubRepository) ByCategory(context.Context, int64, string, string) ([]CategoryTotals, error) {
	return s.byCategory, nil
}

func (s *stubRepository) ByMonth(context.Context, int64, string, string) ([]MonthTotals, error) {
	return s.byMonth, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSummaryComputesNet(t *testing.T) {
	repo := &stubRepository{totals: Totals{
		Income:  decimal.RequireFromString("1200.50"),
		Expense: decimal.RequireFromString("800.25"),
	}}
	svc := NewService(testLogger(), repo, nil)

	summary, err := svc.Summary(context.Background(), 1, "2025-08-01", "2025-08-31")
	require.NoError(t, err)
	assert.True(t, summary.Net.Equal(decimal.RequireFromString("400.25")))
}

func TestSummaryRejectsInvertedRange(t *testing.T) {
	svc := NewService(testLogger(), &stubRepository{}, nil)

	_, err := svc.Summary(context.Background(), 1, "2025-08-31", "2025-08-01")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.Summary(context.Background(), 1, "august", "2025-08-31")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestCategorySharesSumOverExpense(t *testing.T) {
	one, two := int64(1), int64(2)
	repo := &stubRepository{byCategory: []CategoryTotals{
		{CategoryID: &one, CategoryName: "Rent", Expense: decimal.NewFromInt(750)},
		{CategoryID: &two, CategoryName: "Food", Expense: decimal.NewFromInt(250)},
	}}
	svc := NewService(testLogger(), repo, nil)

	breakdown, err := svc.Categories(context.Background(), 1, "2025-08-01", "2025-08-31")
	require.NoError(t, err)
	require.Len(t, breakdown.Categories, 2)
	assert.InDelta(t, 75.0, breakdown.Categories[0].ExpensePct, 0.001)
	assert.InDelta(t, 25.0, breakdown.Categories[1].ExpensePct, 0.001)
}

func TestCategorySharesZeroWhenNoExpense(t *testing.T) {
	one := int64(1)
	repo := &stubRepository{byCategory: []CategoryTotals{
		{CategoryID: &one, CategoryName: "Salary", Income: decimal.NewFromInt(1000)},
	}}
	svc := NewService(testLogger(), repo, nil)

	breakdown, err := svc.Categories(context.Background(), 1, "2025-08-01", "2025-08-31")
	require.NoError(t, err)
	require.Len(t, breakdown.Categories, 1)
	assert.Zero(t, breakdown.Categories[0].ExpensePct)
}

func TestTrendFillsMissingMonths(t *testing.T) {
	now := time.Now().UTC()
	thisMonth := now.Format("2006-01")
	repo := &stubRepository{byMonth: []MonthTotals{
		{Month: thisMonth, Income: decimal.NewFromInt(100), Expense: decimal.NewFromInt(40)},
	}}
	svc := NewService(testLogger(), repo, nil)

	trend, err := svc.Trend(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, trend.Months, 3)

	last := trend.Months[2]
	assert.Equal(t, thisMonth, last.Month)
	assert.True(t, last.Net.Equal(decimal.NewFromInt(60)))
	// Previous month is empty, so net going from zero to positive reads as +100%.
	assert.InDelta(t, 100.0, last.MoMPct, 0.001)

	assert.True(t, trend.Months[0].Net.IsZero())
	assert.Zero(t, trend.Months[0].MoMPct)
}

func TestChangePercent(t *testing.T) {
	assert.InDelta(t, 25.0, changePercent(decimal.NewFromInt(100), decimal.NewFromInt(125)), 0.001)
	assert.InDelta(t, -50.0, changePercent(decimal.NewFromInt(100), decimal.NewFromInt(50)), 0.001)
	assert.Zero(t, changePercent(decimal.Zero, decimal.Zero))
	assert.InDelta(t, 100.0, changePercent(decimal.Zero, decimal.NewFromInt(10)), 0.001)
}

func TestSummaryUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo := &stubRepository{totals: Totals{Income: decimal.NewFromInt(10)}}
	svc := NewService(testLogger(), repo, rdb)

	_, err := svc.Summary(context.Background(), 1, "2025-08-01", "2025-08-31")
	require.NoError(t, err)
	_, err = svc.Summary(context.Background(), 1, "2025-08-01", "2025-08-31")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.totalsCalls)

	// Expired entries recompute.
	mr.FastForward(cacheTTL + time.Second)
	_, err = svc.Summary(context.Background(), 1, "2025-08-01", "2025-08-31")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.totalsCalls)
}

func TestSummarySurvivesRedisOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	repo := &stubRepository{totals: Totals{Income: decimal.NewFromInt(10)}}
	svc := NewService(testLogger(), repo, rdb)

	summary, err := svc.Summary(context.Background(), 1, "2025-08-01", "2025-08-31")
	require.NoError(t, err)
	assert.True(t, summary.Income.Equal(decimal.NewFromInt(10)))
}
