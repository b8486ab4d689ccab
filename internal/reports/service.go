package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var ErrInvalidRange = errors.New("dates must be YYYY-MM-DD and from must not be after to")

const (
	cacheTTL  = 5 * time.Minute
	dayFormat = "2006-01-02"
)

// Service computes aggregate reports. Results are cached in redis with a
// short TTL; any redis failure falls through to the database so reports
// never depend on the cache being up.
type Service struct {
	logger *slog.Logger
	repo   Repository
	rdb    *redis.Client
}

func NewService(logger *slog.Logger, repo Repository, rdb *redis.Client) *Service {
	return &Service{logger: logger, repo: repo, rdb: rdb}
}

func (s *Service) Summary(ctx context.Context, profileID int64, from, to string) (*Summary, error) {
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reports:%d:summary:%s:%s", profileID, from, to)
	var cached Summary
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	totals, err := s.repo.Totals(ctx, profileID, from, to)
	if err != nil {
		return nil, err
	}
	summary := &Summary{
		From:    from,
		To:      to,
		Income:  totals.Income,
		Expense: totals.Expense,
		Net:     totals.Income.Sub(totals.Expense),
	}
	s.cacheSet(ctx, key, summary)
	return summary, nil
}

func (s *Service) Categories(ctx context.Context, profileID int64, from, to string) (*CategoryBreakdown, error) {
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reports:%d:categories:%s:%s", profileID, from, to)
	var cached CategoryBreakdown
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	rows, err := s.repo.ByCategory(ctx, profileID, from, to)
	if err != nil {
		return nil, err
	}

	totalExpense := decimal.Zero
	for _, row := range rows {
		totalExpense = totalExpense.Add(row.Expense)
	}

	breakdown := &CategoryBreakdown{From: from, To: to, Categories: []CategoryShare{}}
	for _, row := range rows {
		breakdown.Categories = append(breakdown.Categories, CategoryShare{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Income:       row.Income,
			Expense:      row.Expense,
			ExpensePct:   sharePercent(row.Expense, totalExpense),
		})
	}
	s.cacheSet(ctx, key, breakdown)
	return breakdown, nil
}

// Trend returns the last months calendar months including the current one,
// with month-over-month percentage change on net.
func (s *Service) Trend(ctx context.Context, profileID int64, months int) (*Trend, error) {
	if months <= 0 {
		months = 6
	}
	if months > 36 {
		months = 36
	}

	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, -(months - 1), 0)
	from := start.Format(dayFormat)
	to := end.AddDate(0, 1, -1).Format(dayFormat)

	key := fmt.Sprintf("reports:%d:trend:%s:%s", profileID, from, to)
	var cached Trend
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	rows, err := s.repo.ByMonth(ctx, profileID, from, to)
	if err != nil {
		return nil, err
	}

	lookup := make(map[string]MonthTotals, len(rows))
	for _, row := range rows {
		lookup[row.Month] = row
	}

	trend := &Trend{Months: make([]MonthlyPoint, 0, months)}
	prevNet := decimal.Zero
	for current := start; !current.After(end); current = current.AddDate(0, 1, 0) {
		month := current.Format("2006-01")
		row := lookup[month]
		net := row.Income.Sub(row.Expense)
		point := MonthlyPoint{
			Month:   month,
			Income:  row.Income,
			Expense: row.Expense,
			Net:     net,
		}
		if !current.Equal(start) {
			point.MoMPct = changePercent(prevNet, net)
		}
		trend.Months = append(trend.Months, point)
		prevNet = net
	}
	s.cacheSet(ctx, key, trend)
	return trend, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.rdb == nil {
		return false
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("report cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		s.logger.Warn("report cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

func normalizeRange(from, to string) (string, string, error) {
	now := time.Now().UTC()
	if from == "" {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Format(dayFormat)
	}
	if to == "" {
		to = now.Format(dayFormat)
	}
	fromTime, err := time.Parse(dayFormat, from)
	if err != nil {
		return "", "", ErrInvalidRange
	}
	toTime, err := time.Parse(dayFormat, to)
	if err != nil {
		return "", "", ErrInvalidRange
	}
	if fromTime.After(toTime) {
		return "", "", ErrInvalidRange
	}
	return from, to, nil
}

func changePercent(base, current decimal.Decimal) float64 {
	if base.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	pct, _ := current.Sub(base).Div(base).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

func sharePercent(value, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	pct, _ := value.Div(total).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
