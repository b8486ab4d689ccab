package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("category not found")
	ErrAlreadyExists = errors.New("category name already used in this profile")
)

// Repository defines persistence operations for categories.
type Repository interface {
	Get(ctx context.Context, profileID, id int64) (*Category, error)
	List(ctx context.Context, profileID int64) ([]Category, error)
	Create(ctx context.Context, c Category) (*Category, error)
	Update(ctx context.Context, profileID, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, profileID, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, profile_id, name, color, created_at, updated_at`

func (r *repository) Get(ctx context.Context, profileID, id int64) (*Category, error) {
	const query = `SELECT ` + columns + ` FROM categories WHERE profile_id = $1 AND id = $2`
	var c Category
	err := r.pool.QueryRow(ctx, query, profileID, id).
		Scan(&c.ID, &c.ProfileID, &c.Name, &c.Color, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, profileID int64) ([]Category, error) {
	const query = `SELECT ` + columns + ` FROM categories WHERE profile_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.ProfileID, &c.Name, &c.Color, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Category) (*Category, error) {
	const query = `
		INSERT INTO categories (profile_id, name, color, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + columns
	var created Category
	err := r.pool.QueryRow(ctx, query, c.ProfileID, c.Name, c.Color).
		Scan(&created.ID, &created.ProfileID, &created.Name, &created.Color, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, profileID, id int64, updates map[string]interface{}) error {
	query := "UPDATE categories SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, column := range []string{"name", "color"} {
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

// Delete removes a category; transactions referencing it keep their rows
// with category_id set to NULL (FK ON DELETE SET NULL).
func (r *repository) Delete(ctx context.Context, profileID, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM categories WHERE profile_id = $1 AND id = $2", profileID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
