package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pocketledger/pocketledger/internal/reports"
)

// ReportWarmupJob pre-populates report caches for profiles that saw recent
// activity, so the first dashboard load after the TTL stays fast.
type ReportWarmupJob struct {
	Reports *reports.Service
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	clock   func() time.Time
}

func NewReportWarmupJob(reportsSvc *reports.Service, pool *pgxpool.Pool, logger *slog.Logger) *ReportWarmupJob {
	return &ReportWarmupJob{
		Reports: reportsSvc,
		Pool:    pool,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskReportWarmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}

	profileIDs, err := j.activeProfiles(ctx)
	if err != nil {
		j.logger().Error("load active profiles", slog.Any("error", err))
		return err
	}
	if len(profileIDs) == 0 {
		j.logger().Info("no active profiles to warm")
		return nil
	}

	now := j.clock()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	to := now.Format("2006-01-02")

	warmed := 0
	for _, profileID := range profileIDs {
		if err := j.warmProfile(ctx, profileID, from, to); err != nil {
			j.logger().Error("warm profile", slog.Int64("profile_id", profileID), slog.Any("error", err))
			return err
		}
		warmed++
	}

	j.logger().Info("completed report warmup", slog.Int("profiles", warmed), slog.Duration("duration", time.Since(now)))
	return nil
}

func (j *ReportWarmupJob) warmProfile(ctx context.Context, profileID int64, from, to string) error {
	// Bound each profile so one slow aggregate cannot stall the whole sweep.
	profileCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := j.Reports.Summary(profileCtx, profileID, from, to); err != nil {
		return err
	}
	if _, err := j.Reports.Categories(profileCtx, profileID, from, to); err != nil {
		return err
	}
	if _, err := j.Reports.Trend(profileCtx, profileID, 6); err != nil {
		return err
	}
	return nil
}

func (j *ReportWarmupJob) activeProfiles(ctx context.Context) ([]int64, error) {
	if j.Pool == nil {
		return nil, errors.New("report warmup: pool not configured")
	}
	const query = `
		SELECT DISTINCT profile_id FROM transactions
		WHERE occurred_on >= CURRENT_DATE - INTERVAL '90 days'
		ORDER BY profile_id`
	rows, err := j.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}
