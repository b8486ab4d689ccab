package push

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Enqueuer is the slice of asynq.Client the dispatcher uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher fans a notification out to every subscription of its audience
// by enqueuing one push:send task per endpoint. Delivery happens in the
// worker process.
type Dispatcher struct {
	logger *slog.Logger
	repo   Repository
	queue  Enqueuer
}

func NewDispatcher(logger *slog.Logger, repo Repository, queue Enqueuer) *Dispatcher {
	return &Dispatcher{logger: logger, repo: repo, queue: queue}
}

// NotifyInvitation notifies the invited address. Satisfies the invitation
// service's notifier; a recipient without an account or subscriptions is
// not an error.
func (d *Dispatcher) NotifyInvitation(ctx context.Context, email, message string, profileID int64) error {
	subs, err := d.repo.ListByEmail(ctx, email)
	if err != nil {
		return err
	}
	return d.enqueue(ctx, subs, "Profile invitation", message, profileID)
}

// NotifyProfile notifies every member of a profile.
func (d *Dispatcher) NotifyProfile(ctx context.Context, profileID int64, title, body string) error {
	subs, err := d.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return err
	}
	return d.enqueue(ctx, subs, title, body, profileID)
}

func (d *Dispatcher) enqueue(ctx context.Context, subs []Subscription, title, body string, profileID int64) error {
	for _, sub := range subs {
		task, err := NewSendTask(SendPayload{
			SubscriptionID: sub.ID,
			Endpoint:       sub.Endpoint,
			Title:          title,
			Body:           body,
			ProfileID:      profileID,
		})
		if err != nil {
			return err
		}
		if _, err := d.queue.EnqueueContext(ctx, task); err != nil {
			d.logger.Warn("enqueue push task", slog.String("subscription_id", sub.ID), slog.Any("error", err))
			return err
		}
	}
	return nil
}
