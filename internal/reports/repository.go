package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Totals holds signed aggregates for a range.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// CategoryTotals is the raw per-category aggregate before shares are computed.
type CategoryTotals struct {
	CategoryID   *int64
	CategoryName string
	Income       decimal.Decimal
	Expense      decimal.Decimal
}

// MonthTotals is the raw per-month aggregate.
type MonthTotals struct {
	Month   string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Repository exposes the aggregate queries the report service needs.
type Repository interface {
	Totals(ctx context.Context, profileID int64, from, to string) (Totals, error)
	ByCategory(ctx context.Context, profileID int64, from, to string) ([]CategoryTotals, error)
	ByMonth(ctx context.Context, profileID int64, from, to string) ([]MonthTotals, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Totals(ctx context.Context, profileID int64, from, to string) (Totals, error) {
	const query = `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'INCOME'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'EXPENSE'), 0)
		FROM transactions
		WHERE profile_id = $1 AND occurred_on >= $2 AND occurred_on <= $3`
	var income, expense pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, profileID, from, to).Scan(&income, &expense); err != nil {
		return Totals{}, err
	}
	return Totals{Income: fromNumeric(income), Expense: fromNumeric(expense)}, nil
}

func (r *repository) ByCategory(ctx context.Context, profileID int64, from, to string) ([]CategoryTotals, error) {
	const query = `
		SELECT
			t.category_id,
			COALESCE(c.name, 'Uncategorized'),
			COALESCE(SUM(t.amount) FILTER (WHERE t.type = 'INCOME'), 0),
			COALESCE(SUM(t.amount) FILTER (WHERE t.type = 'EXPENSE'), 0)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.profile_id = $1 AND t.occurred_on >= $2 AND t.occurred_on <= $3
		GROUP BY t.category_id, c.name
		ORDER BY 4 DESC`
	rows, err := r.pool.Query(ctx, query, profileID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryTotals
	for rows.Next() {
		var ct CategoryTotals
		var income, expense pgtype.Numeric
		if err := rows.Scan(&ct.CategoryID, &ct.CategoryName, &income, &expense); err != nil {
			return nil, err
		}
		ct.Income = fromNumeric(income)
		ct.Expense = fromNumeric(expense)
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (r *repository) ByMonth(ctx context.Context, profileID int64, from, to string) ([]MonthTotals, error) {
	const query = `
		SELECT
			TO_CHAR(DATE_TRUNC('month', occurred_on), 'YYYY-MM'),
			COALESCE(SUM(amount) FILTER (WHERE type = 'INCOME'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'EXPENSE'), 0)
		FROM transactions
		WHERE profile_id = $1 AND occurred_on >= $2 AND occurred_on <= $3
		GROUP BY 1
		ORDER BY 1`
	rows, err := r.pool.Query(ctx, query, profileID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthTotals
	for rows.Next() {
		var mt MonthTotals
		var income, expense pgtype.Numeric
		if err := rows.Scan(&mt.Month, &income, &expense); err != nil {
			return nil, err
		}
		mt.Income = fromNumeric(income)
		mt.Expense = fromNumeric(expense)
		out = append(out, mt)
	}
	return out, rows.Err()
}

func fromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
