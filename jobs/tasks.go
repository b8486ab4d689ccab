package jobs

import "github.com/hibiken/asynq"

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReminderScan sweeps events with due reminders.
	TaskReminderScan = "events:reminder_scan"
	// TaskReportWarmup pre-populates report caches for active profiles.
	TaskReportWarmup = "reports:warmup"
)

// NewReminderScanTask constructs the periodic reminder sweep task.
func NewReminderScanTask() *asynq.Task {
	return asynq.NewTask(TaskReminderScan, nil)
}

// NewReportWarmupTask constructs the periodic report warmup task.
func NewReportWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReportWarmup, nil)
}
