package push

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// TaskTypeSend is the asynq task type for delivering one push message.
const TaskTypeSend = "push:send"

// SendPayload carries everything the delivery worker needs for one endpoint.
type SendPayload struct {
	SubscriptionID string `json:"subscription_id"`
	Endpoint       string `json:"endpoint"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	ProfileID      int64  `json:"profile_id,omitempty"`
}

// NewSendTask constructs an asynq task for one push delivery.
func NewSendTask(payload SendPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSend, data), nil
}

// SendJob processes TaskTypeSend tasks. The actual web-push transport is a
// followup; for now the dispatch is logged so delivery can be observed.
type SendJob struct {
	Logger *slog.Logger
}

func (j *SendJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("push dispatch",
		slog.String("subscription_id", payload.SubscriptionID),
		slog.String("title", payload.Title),
		slog.Int64("profile_id", payload.ProfileID))
	return nil
}
