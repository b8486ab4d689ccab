package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pocketledger/pocketledger/internal/ability"
	"github.com/pocketledger/pocketledger/internal/platform/db"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyMember = errors.New("account is already a member")
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository defines persistence operations for profiles and memberships.
type Repository interface {
	CreateWithOwner(ctx context.Context, name, currency string, ownerID int64) (*Profile, error)
	Get(ctx context.Context, id int64) (*Profile, error)
	ListForAccount(ctx context.Context, accountID int64) ([]ProfileWithRole, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	ListMembers(ctx context.Context, profileID int64) ([]Member, error)
	AddMember(ctx context.Context, profileID, accountID int64, role ability.Role) error
	UpdateMemberRole(ctx context.Context, profileID, accountID int64, role ability.Role) error
	RemoveMember(ctx context.Context, profileID, accountID int64) error
	MemberRole(ctx context.Context, profileID, accountID int64) (ability.Role, error)
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// CreateWithOwner inserts the profile and its owner's ADMIN membership in a
// single transaction.
func (r *repository) CreateWithOwner(ctx context.Context, name, currency string, ownerID int64) (*Profile, error) {
	var profile *Profile
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insertProfile = `
			INSERT INTO profiles (name, currency, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			RETURNING id, name, currency, created_by, created_at, updated_at`
		p, err := scanProfile(tx.QueryRow(ctx, insertProfile, name, currency, ownerID))
		if err != nil {
			return err
		}
		const insertMember = `
			INSERT INTO profile_members (profile_id, account_id, permission, created_at)
			VALUES ($1, $2, $3, NOW())`
		if _, err := tx.Exec(ctx, insertMember, p.ID, ownerID, string(ability.RoleAdmin)); err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Profile, error) {
	const query = `
		SELECT id, name, currency, created_by, created_at, updated_at
		FROM profiles WHERE id = $1`
	p, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *repository) ListForAccount(ctx context.Context, accountID int64) ([]ProfileWithRole, error) {
	const query = `
		SELECT p.id, p.name, p.currency, p.created_by, p.created_at, p.updated_at, pm.permission
		FROM profiles p
		JOIN profile_members pm ON pm.profile_id = p.id
		WHERE pm.account_id = $1
		ORDER BY p.name`
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProfileWithRole
	for rows.Next() {
		var pr ProfileWithRole
		var role string
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.Currency, &pr.CreatedBy, &pr.CreatedAt, &pr.UpdatedAt, &role); err != nil {
			return nil, err
		}
		pr.Role, _ = ability.ParseRole(role)
		result = append(result, pr)
	}
	return result, rows.Err()
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE profiles SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	if v, ok := updates["name"]; ok {
		query += fmt.Sprintf(", name = $%d", argPos)
		args = append(args, v)
		argPos++
	}
	if v, ok := updates["currency"]; ok {
		query += fmt.Sprintf(", currency = $%d", argPos)
		args = append(args, v)
		argPos++
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM profiles WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListMembers(ctx context.Context, profileID int64) ([]Member, error) {
	const query = `
		SELECT pm.profile_id, pm.account_id, a.email, a.name, pm.permission, pm.created_at
		FROM profile_members pm
		JOIN accounts a ON a.id = pm.account_id
		WHERE pm.profile_id = $1
		ORDER BY a.email`
	rows, err := r.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		var role string
		if err := rows.Scan(&m.ProfileID, &m.AccountID, &m.Email, &m.Name, &role, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role, _ = ability.ParseRole(role)
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *repository) AddMember(ctx context.Context, profileID, accountID int64, role ability.Role) error {
	const query = `
		INSERT INTO profile_members (profile_id, account_id, permission, created_at)
		VALUES ($1, $2, $3, NOW())`
	if _, err := r.db.Exec(ctx, query, profileID, accountID, string(role)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyMember
		}
		return err
	}
	return nil
}

func (r *repository) UpdateMemberRole(ctx context.Context, profileID, accountID int64, role ability.Role) error {
	const query = `
		UPDATE profile_members SET permission = $3
		WHERE profile_id = $1 AND account_id = $2`
	tag, err := r.db.Exec(ctx, query, profileID, accountID, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) RemoveMember(ctx context.Context, profileID, accountID int64) error {
	const query = `DELETE FROM profile_members WHERE profile_id = $1 AND account_id = $2`
	tag, err := r.db.Exec(ctx, query, profileID, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MemberRole satisfies ability.Resolver; the guard calls it on every
// profile-scoped request.
func (r *repository) MemberRole(ctx context.Context, profileID, accountID int64) (ability.Role, error) {
	const query = `
		SELECT permission FROM profile_members
		WHERE profile_id = $1 AND account_id = $2`
	var raw string
	if err := r.db.QueryRow(ctx, query, profileID, accountID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ability.ErrNoMembership
		}
		return "", err
	}
	role, ok := ability.ParseRole(raw)
	if !ok {
		return "", ability.ErrNoMembership
	}
	return role, nil
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	if err := row.Scan(&p.ID, &p.Name, &p.Currency, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
