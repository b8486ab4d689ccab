package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("account not found")
	ErrEmailTaken    = errors.New("email already registered")
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	Create(ctx context.Context, email, name, passwordHash string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, email, name, passwordHash string) (*Account, error) {
	const query = `
		INSERT INTO accounts (email, name, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		RETURNING id, email, name, password_hash, is_active, created_at, updated_at`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, email, name, passwordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return a, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	const query = `
		SELECT id, email, name, password_hash, is_active, created_at, updated_at
		FROM accounts WHERE email = $1`
	return r.findOne(ctx, query, email)
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Account, error) {
	const query = `
		SELECT id, email, name, password_hash, is_active, created_at, updated_at
		FROM accounts WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *repository) findOne(ctx context.Context, query string, arg any) (*Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	var createdAt, updatedAt time.Time
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.CreatedAt = createdAt
	a.UpdatedAt = updatedAt
	return &a, nil
}
