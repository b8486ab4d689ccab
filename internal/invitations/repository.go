package invitations

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pocketledger/pocketledger/internal/ability"
	"github.com/pocketledger/pocketledger/internal/platform/db"
)

var (
	ErrNotFound       = errors.New("invitation not found")
	ErrAlreadyDecided = errors.New("invitation already decided")
	ErrAlreadyMember  = errors.New("account is already a member")
	ErrEmailMismatch  = errors.New("invitation addressed to a different email")
)

// Repository defines persistence operations for invitations.
type Repository interface {
	Create(ctx context.Context, inv Invitation) (*Invitation, error)
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	ListByProfile(ctx context.Context, profileID int64) ([]Invitation, error)
	ListPendingForEmail(ctx context.Context, email string) ([]Invitation, error)
	Accept(ctx context.Context, token string, accountID int64) (*Invitation, error)
	Reject(ctx context.Context, token string, accountID int64) (*Invitation, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, profile_id, email, message, permission, token, status, invited_by, created_at, decided_at`

func (r *repository) Create(ctx context.Context, inv Invitation) (*Invitation, error) {
	const query = `
		INSERT INTO invitations (profile_id, email, message, permission, token, status, invited_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING ` + columns
	created, err := scanInvitation(r.pool.QueryRow(ctx, query,
		inv.ProfileID, inv.Email, inv.Message, string(inv.Permission), inv.Token, string(inv.Status), inv.InvitedBy))
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *repository) GetByToken(ctx context.Context, token string) (*Invitation, error) {
	const query = `SELECT ` + columns + ` FROM invitations WHERE token = $1`
	inv, err := scanInvitation(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *repository) ListByProfile(ctx context.Context, profileID int64) ([]Invitation, error) {
	const query = `SELECT ` + columns + ` FROM invitations WHERE profile_id = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, profileID)
}

func (r *repository) ListPendingForEmail(ctx context.Context, email string) ([]Invitation, error) {
	const query = `SELECT ` + columns + ` FROM invitations WHERE email = $1 AND status = 'PENDING' ORDER BY created_at DESC`
	return r.queryMany(ctx, query, email)
}

// Accept transitions a PENDING invitation to ACCEPTED and inserts the
// membership row in one transaction. The row is locked so a concurrent
// second accept observes the terminal state and fails.
func (r *repository) Accept(ctx context.Context, token string, accountID int64) (*Invitation, error) {
	var accepted *Invitation
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		inv, err := r.lockPending(ctx, tx, token, accountID)
		if err != nil {
			return err
		}
		const insertMember = `
			INSERT INTO profile_members (profile_id, account_id, permission, created_at)
			VALUES ($1, $2, $3, NOW())`
		if _, err := tx.Exec(ctx, insertMember, inv.ProfileID, accountID, string(inv.Permission)); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrAlreadyMember
			}
			return err
		}
		return r.decide(ctx, tx, inv, StatusAccepted, &accepted)
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// Reject transitions a PENDING invitation to REJECTED.
func (r *repository) Reject(ctx context.Context, token string, accountID int64) (*Invitation, error) {
	var rejected *Invitation
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		inv, err := r.lockPending(ctx, tx, token, accountID)
		if err != nil {
			return err
		}
		return r.decide(ctx, tx, inv, StatusRejected, &rejected)
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

func (r *repository) lockPending(ctx context.Context, tx pgx.Tx, token string, accountID int64) (*Invitation, error) {
	const query = `SELECT ` + columns + ` FROM invitations WHERE token = $1 FOR UPDATE`
	inv, err := scanInvitation(tx.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if inv.Status != StatusPending {
		return nil, ErrAlreadyDecided
	}

	var accountEmail string
	if err := tx.QueryRow(ctx, `SELECT email FROM accounts WHERE id = $1`, accountID).Scan(&accountEmail); err != nil {
		return nil, err
	}
	if accountEmail != inv.Email {
		return nil, ErrEmailMismatch
	}
	return inv, nil
}

func (r *repository) decide(ctx context.Context, tx pgx.Tx, inv *Invitation, status Status, out **Invitation) error {
	const query = `
		UPDATE invitations SET status = $2, decided_at = NOW()
		WHERE id = $1
		RETURNING ` + columns
	updated, err := scanInvitation(tx.QueryRow(ctx, query, inv.ID, string(status)))
	if err != nil {
		return err
	}
	*out = updated
	return nil
}

func (r *repository) queryMany(ctx context.Context, query string, arg any) ([]Invitation, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []Invitation
	for rows.Next() {
		inv, err := scanInvitationRows(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, *inv)
	}
	return invitations, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanInvitation(row pgx.Row) (*Invitation, error)     { return scanFrom(row) }
func scanInvitationRows(rows pgx.Rows) (*Invitation, error) { return scanFrom(rows) }

func scanFrom(s scannable) (*Invitation, error) {
	var inv Invitation
	var permission, status string
	var decidedAt *time.Time
	if err := s.Scan(&inv.ID, &inv.ProfileID, &inv.Email, &inv.Message, &permission, &inv.Token,
		&status, &inv.InvitedBy, &inv.CreatedAt, &decidedAt); err != nil {
		return nil, err
	}
	inv.Permission, _ = ability.ParseRole(permission)
	inv.Status = Status(status)
	inv.DecidedAt = decidedAt
	return &inv, nil
}
