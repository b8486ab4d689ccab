package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrUnknownCategory = errors.New("category does not exist")
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository defines persistence operations for transactions.
type Repository interface {
	Get(ctx context.Context, profileID, id int64) (*Transaction, error)
	List(ctx context.Context, profileID int64, filters ListFilters) ([]Transaction, int, error)
	Create(ctx context.Context, tx Transaction) (*Transaction, error)
	Update(ctx context.Context, profileID, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, profileID, id int64) error
}

type repository struct {
	db dbtx
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const columns = `id, profile_id, type, amount, description, category_id, occurred_on, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, profileID, id int64) (*Transaction, error) {
	const query = `SELECT ` + columns + ` FROM transactions WHERE profile_id = $1 AND id = $2`
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, profileID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tx, nil
}

func (r *repository) List(ctx context.Context, profileID int64, filters ListFilters) ([]Transaction, int, error) {
	conditions := []string{"profile_id = $1"}
	args := []interface{}{profileID}
	argPos := 2

	if filters.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argPos))
		args = append(args, filters.Type)
		argPos++
	}
	if filters.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argPos))
		args = append(args, *filters.CategoryID)
		argPos++
	}
	if filters.From != "" {
		conditions = append(conditions, fmt.Sprintf("occurred_on >= $%d", argPos))
		args = append(args, filters.From)
		argPos++
	}
	if filters.To != "" {
		conditions = append(conditions, fmt.Sprintf("occurred_on <= $%d", argPos))
		args = append(args, filters.To)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := (filters.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT `+columns+`
		FROM transactions
		%s
		ORDER BY occurred_on DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		tx, err := scanTransactionRows(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, tx Transaction) (*Transaction, error) {
	const query = `
		INSERT INTO transactions (profile_id, type, amount, description, category_id, occurred_on, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + columns
	created, err := scanTransaction(r.db.QueryRow(ctx, query,
		tx.ProfileID, string(tx.Type), tx.Amount.String(), tx.Description, tx.CategoryID,
		tx.OccurredOn, tx.CreatedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrUnknownCategory
		}
		return nil, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, profileID, id int64, updates map[string]interface{}) error {
	query := "UPDATE transactions SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, column := range []string{"type", "amount", "description", "category_id", "occurred_on"} {
		if v, ok := updates[column]; ok {
			query += fmt.Sprintf(", %s = $%d", column, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE profile_id = $%d AND id = $%d", argPos, argPos+1)
	args = append(args, profileID, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrUnknownCategory
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, profileID, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM transactions WHERE profile_id = $1 AND id = $2", profileID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTransaction(row pgx.Row) (*Transaction, error)      { return scanFrom(row) }
func scanTransactionRows(rows pgx.Rows) (*Transaction, error) { return scanFrom(rows) }

func scanFrom(s scannable) (*Transaction, error) {
	var tx Transaction
	var txType string
	var amount pgtype.Numeric
	var categoryID *int64
	var occurredOn time.Time
	if err := s.Scan(&tx.ID, &tx.ProfileID, &txType, &amount, &tx.Description, &categoryID,
		&occurredOn, &tx.CreatedBy, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
		return nil, err
	}
	tx.Type = Type(txType)
	tx.CategoryID = categoryID
	tx.OccurredOn = occurredOn
	if amount.Valid {
		tx.Amount = decimal.NewFromBigInt(amount.Int, amount.Exp)
	}
	return &tx, nil
}
