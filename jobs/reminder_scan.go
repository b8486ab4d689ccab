package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pocketledger/pocketledger/internal/events"
)

const reminderBatchSize = 200

// ProfileNotifier fans a message out to a profile's members.
type ProfileNotifier interface {
	NotifyProfile(ctx context.Context, profileID int64, title, body string) error
}

// ReminderScanJob turns due event reminders into push notifications. The
// repository marks reminders sent as it claims them, so a partially failed
// run does not re-send the already dispatched ones.
type ReminderScanJob struct {
	Events   events.Repository
	Notifier ProfileNotifier
	Logger   *slog.Logger
	clock    func() time.Time
}

func NewReminderScanJob(repo events.Repository, notifier ProfileNotifier, logger *slog.Logger) *ReminderScanJob {
	return &ReminderScanJob{
		Events:   repo,
		Notifier: notifier,
		Logger:   logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskReminderScan tasks.
func (j *ReminderScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Events == nil || j.Notifier == nil {
		return errors.New("reminder scan: handler not configured")
	}

	now := j.clock()
	due, err := j.Events.DueReminders(ctx, now, reminderBatchSize)
	if err != nil {
		j.logger().Error("load due reminders", slog.Any("error", err))
		return err
	}
	if len(due) == 0 {
		return nil
	}

	notified := 0
	for _, event := range due {
		body := fmt.Sprintf("%s at %s", event.Title, event.StartsAt.Format("Jan 2 15:04"))
		if event.AllDay {
			body = fmt.Sprintf("%s on %s", event.Title, event.StartsAt.Format("Jan 2"))
		}
		if err := j.Notifier.NotifyProfile(ctx, event.ProfileID, "Upcoming event", body); err != nil {
			j.logger().Error("notify profile",
				slog.Int64("profile_id", event.ProfileID),
				slog.Int64("event_id", event.ID),
				slog.Any("error", err))
			return err
		}
		notified++
	}

	j.logger().Info("completed reminder scan", slog.Int("notified", notified))
	return nil
}

func (j *ReminderScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReminderScan))
	}
	return slog.Default().With(slog.String("job", TaskReminderScan))
}
