package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("event not found")

// Repository defines persistence operations for calendar events.
type Repository interface {
	Get(ctx context.Context, profileID, id int64) (*Event, error)
	ListRange(ctx context.Context, profileID int64, from, to time.Time) ([]Event, error)
	Create(ctx context.Context, e Event) (*Event, error)
	Update(ctx context.Context, profileID, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, profileID, id int64) error

	// DueReminders returns events whose reminder time has passed and that
	// have not been reminded yet, marking them sent in the same statement
	// so a crashed worker cannot double-send.
	DueReminders(ctx context.Context, now time.Time, limit int) ([]Event, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, profile_id, title, starts_at, all_day, note, remind_at, reminder_sent_at, created_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, profileID, id int64) (*Event, error) {
	const query = `SELECT ` + columns + ` FROM events WHERE profile_id = $1 AND id = $2`
	e, err := scanEvent(r.pool.QueryRow(ctx, query, profileID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *repository) ListRange(ctx context.Context, profileID int64, from, to time.Time) ([]Event, error) {
	const query = `
		SELECT ` + columns + `
		FROM events
		WHERE profile_id = $1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at, id`
	rows, err := r.pool.Query(ctx, query, profileID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *repository) Create(ctx context.Context, e Event) (*Event, error) {
	const query = `
		INSERT INTO events (profile_id, title, starts_at, all_day, note, remind_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + columns
	return scanEvent(r.pool.QueryRow(ctx, query,
		e.ProfileID, e.Title, e.StartsAt, e.AllDay, e.Note, e.RemindAt, e.CreatedBy))
}

func (r *repository) Update(ctx context.Context, profileID, id int64, updates map[string]interface{}) error {
	query := "UPDATE events SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, column := range []string{"title", "starts_at", "all_day", "note", "remind_at"} {
		if v, ok := updates[column]; ok {
			query += fmt.Sprintf(", %s = $%d", column, argPos)
			args = append(args, v)
			argPos++
		}
	}
	// Changing the reminder re-arms it.
	if _, ok := updates["remind_at"]; ok {
		query += ", reminder_sent_at = NULL"
	}

	query += fmt.Sprintf(" WHERE profile_id = $%d AND id = $%d", argPos, argPos+1)
	args = append(args, profileID, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, profileID, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM events WHERE profile_id = $1 AND id = $2", profileID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DueReminders(ctx context.Context, now time.Time, limit int) ([]Event, error) {
	const query = `
		UPDATE events SET reminder_sent_at = NOW()
		WHERE id IN (
			SELECT id FROM events
			WHERE remind_at IS NOT NULL AND remind_at <= $1 AND reminder_sent_at IS NULL
			ORDER BY remind_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + columns
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEvent(s scannable) (*Event, error) {
	var e Event
	if err := s.Scan(&e.ID, &e.ProfileID, &e.Title, &e.StartsAt, &e.AllDay, &e.Note,
		&e.RemindAt, &e.ReminderSentAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
