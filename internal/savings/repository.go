package savings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/platform/db"
)

var (
	ErrNotFound          = errors.New("savings goal not found")
	ErrAlreadyExists     = errors.New("savings goal name already used in this profile")
	ErrInsufficientFunds = errors.New("withdrawal exceeds current amount")
)

// Repository defines persistence operations for savings goals.
type Repository interface {
	Get(ctx context.Context, profileID, id int64) (*Goal, error)
	List(ctx context.Context, profileID int64) ([]Goal, error)
	Create(ctx context.Context, g Goal) (*Goal, error)
	Update(ctx context.Context, profileID, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, profileID, id int64) error
	Adjust(ctx context.Context, profileID, id int64, delta decimal.Decimal) (*Goal, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, profile_id, name, asset_type, target_amount, current_amount, created_at, updated_at`

func (r *repository) Get(ctx context.Context, profileID, id int64) (*Goal, error) {
	const query = `SELECT ` + columns + ` FROM savings_goals WHERE profile_id = $1 AND id = $2`
	g, err := scanGoal(r.pool.QueryRow(ctx, query, profileID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *repository) List(ctx context.Context, profileID int64) ([]Goal, error) {
	const query = `SELECT ` + columns + ` FROM savings_goals WHERE profile_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (r *repository) Create(ctx context.Context, g Goal) (*Goal, error) {
	const query = `
		INSERT INTO savings_goals (profile_id, name, asset_type, target_amount, current_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, NOW(), NOW())
		RETURNING ` + columns
	created, err := scanGoal(r.pool.QueryRow(ctx, query,
		g.ProfileID, g.Name, string(g.AssetType), g.TargetAmount.String()))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, profileID, id int64, updates map[string]interface{}) error {
	query := "UPDATE savings_goals SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, column := range []string{"name", "asset_type", "target_amount"} {
		if v, ok := updates[column]; ok {
			query += fmt.Sprintf(", %s = $%d", column, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE profile_id = $%d AND id = $%d", argPos, argPos+1)
	args = append(args, profileID, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, profileID, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM savings_goals WHERE profile_id = $1 AND id = $2", profileID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Adjust applies a signed delta to the goal's current amount. The row is
// locked for the duration so concurrent deposits cannot lose updates, and
// a withdrawal past zero aborts the transaction.
func (r *repository) Adjust(ctx context.Context, profileID, id int64, delta decimal.Decimal) (*Goal, error) {
	var updated *Goal
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const lock = `SELECT current_amount FROM savings_goals WHERE profile_id = $1 AND id = $2 FOR UPDATE`
		var current pgtype.Numeric
		if err := tx.QueryRow(ctx, lock, profileID, id).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		next := decimal.NewFromBigInt(current.Int, current.Exp).Add(delta)
		if next.IsNegative() {
			return ErrInsufficientFunds
		}

		const apply = `
			UPDATE savings_goals SET current_amount = $3, updated_at = NOW()
			WHERE profile_id = $1 AND id = $2
			RETURNING ` + columns
		g, err := scanGoal(tx.QueryRow(ctx, apply, profileID, id, next.String()))
		if err != nil {
			return err
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanGoal(s scannable) (*Goal, error) {
	var g Goal
	var assetType string
	var target, current pgtype.Numeric
	if err := s.Scan(&g.ID, &g.ProfileID, &g.Name, &assetType, &target, &current,
		&g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.AssetType = AssetType(assetType)
	if target.Valid {
		g.TargetAmount = decimal.NewFromBigInt(target.Int, target.Exp)
	}
	if current.Valid {
		g.CurrentAmount = decimal.NewFromBigInt(current.Int, current.Exp)
	}
	return &g, nil
}
