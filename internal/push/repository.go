package push

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("push subscription not found")

// Repository defines persistence operations for push subscriptions.
type Repository interface {
	Save(ctx context.Context, sub Subscription) (*Subscription, error)
	ListByAccount(ctx context.Context, accountID int64) ([]Subscription, error)
	Delete(ctx context.Context, accountID int64, id string) error

	// ListByEmail resolves the subscriptions of the account owning the
	// address, skipping accounts that opted out of notifications.
	ListByEmail(ctx context.Context, email string) ([]Subscription, error)

	// ListByProfile resolves the subscriptions of every member of a
	// profile, skipping opted-out accounts.
	ListByProfile(ctx context.Context, profileID int64) ([]Subscription, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, account_id, endpoint, p256dh, auth, created_at`

// Save upserts on (account_id, endpoint) so re-subscribing from the same
// browser refreshes the keys instead of piling up rows.
func (r *repository) Save(ctx context.Context, sub Subscription) (*Subscription, error) {
	const query = `
		INSERT INTO push_subscriptions (id, account_id, endpoint, p256dh, auth, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (account_id, endpoint) DO UPDATE SET
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth
		RETURNING ` + columns
	var saved Subscription
	err := r.pool.QueryRow(ctx, query, sub.ID, sub.AccountID, sub.Endpoint, sub.P256dh, sub.Auth).
		Scan(&saved.ID, &saved.AccountID, &saved.Endpoint, &saved.P256dh, &saved.Auth, &saved.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID int64) ([]Subscription, error) {
	const query = `SELECT ` + columns + ` FROM push_subscriptions WHERE account_id = $1 ORDER BY created_at`
	return r.list(ctx, query, accountID)
}

func (r *repository) Delete(ctx context.Context, accountID int64, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM push_subscriptions WHERE account_id = $1 AND id = $2", accountID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListByEmail(ctx context.Context, email string) ([]Subscription, error) {
	const query = `
		SELECT ps.id, ps.account_id, ps.endpoint, ps.p256dh, ps.auth, ps.created_at
		FROM push_subscriptions ps
		JOIN accounts a ON a.id = ps.account_id
		LEFT JOIN settings s ON s.account_id = a.id
		WHERE a.email = $1 AND COALESCE(s.notifications_enabled, TRUE)`
	return r.list(ctx, query, email)
}

func (r *repository) ListByProfile(ctx context.Context, profileID int64) ([]Subscription, error) {
	const query = `
		SELECT ps.id, ps.account_id, ps.endpoint, ps.p256dh, ps.auth, ps.created_at
		FROM push_subscriptions ps
		JOIN profile_members pm ON pm.account_id = ps.account_id
		LEFT JOIN settings s ON s.account_id = ps.account_id
		WHERE pm.profile_id = $1 AND COALESCE(s.notifications_enabled, TRUE)`
	return r.list(ctx, query, profileID)
}

func (r *repository) list(ctx context.Context, query string, arg interface{}) ([]Subscription, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(&sub.ID, &sub.AccountID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
