package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Settings are per-account preferences. Accounts that never saved settings
// get the defaults.
type Settings struct {
	Currency             string `json:"currency"`
	Locale               string `json:"locale"`
	WeekStartsOn         int    `json:"week_starts_on"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// Defaults returned when an account has no stored settings row.
func Defaults() Settings {
	return Settings{
		Currency:             "USD",
		Locale:               "en-US",
		WeekStartsOn:         1,
		NotificationsEnabled: true,
	}
}

type UpdateSettingsRequest struct {
	Currency             string `json:"currency" validate:"required,len=3,uppercase"`
	Locale               string `json:"locale" validate:"required,bcp47_language_tag"`
	WeekStartsOn         int    `json:"week_starts_on" validate:"min=0,max=6"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// Repository defines persistence operations for account settings.
type Repository interface {
	Get(ctx context.Context, accountID int64) (*Settings, error)
	Upsert(ctx context.Context, accountID int64, s Settings) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, accountID int64) (*Settings, error) {
	const query = `
		SELECT currency, locale, week_starts_on, notifications_enabled
		FROM settings WHERE account_id = $1`
	var s Settings
	err := r.pool.QueryRow(ctx, query, accountID).
		Scan(&s.Currency, &s.Locale, &s.WeekStartsOn, &s.NotificationsEnabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			defaults := Defaults()
			return &defaults, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) Upsert(ctx context.Context, accountID int64, s Settings) error {
	const query = `
		INSERT INTO settings (account_id, currency, locale, week_starts_on, notifications_enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (account_id) DO UPDATE SET
			currency = EXCLUDED.currency,
			locale = EXCLUDED.locale,
			week_starts_on = EXCLUDED.week_starts_on,
			notifications_enabled = EXCLUDED.notifications_enabled,
			updated_at = NOW()`
	_, err := r.pool.Exec(ctx, query, accountID, s.Currency, s.Locale, s.WeekStartsOn, s.NotificationsEnabled)
	return err
}
