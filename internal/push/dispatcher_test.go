package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	byEmail   map[string][]Subscription
	byProfile map[int64][]Subscription
}

func (m *mockRepository) Save(_ context.Context, sub Subscription) (*Subscription, error) {
	return &sub, nil
}

func (m *mockRepository) ListByAccount(context.Context, int64) ([]Subscription, error) {
	return nil, nil
}

func (m *mockRepository) Delete(context.Context, int64, string) error { return nil }

func (m *mockRepository) ListByEmail(_ context.Context, email string) ([]Subscription, error) {
	return m.byEmail[email], nil
}

func (m *mockRepository) ListByProfile(_ context.Context, profileID int64) ([]Subscription, error) {
	return m.byProfile[profileID], nil
}

type captureEnqueuer struct {
	tasks []*asynq.Task
}

func (c *captureEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestNotifyInvitationFansOutPerSubscription(t *testing.T) {
	repo := &mockRepository{byEmail: map[string][]Subscription{
		"bob@example.com": {
			{ID: "sub-1", Endpoint: "https://push.example.com/1"},
			{ID: "sub-2", Endpoint: "https://push.example.com/2"},
		},
	}}
	queue := &captureEnqueuer{}
	d := NewDispatcher(slog.New(slog.DiscardHandler), repo, queue)

	err := d.NotifyInvitation(context.Background(), "bob@example.com", "You were invited", 7)
	require.NoError(t, err)
	require.Len(t, queue.tasks, 2)

	var payload SendPayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
	assert.Equal(t, TaskTypeSend, queue.tasks[0].Type())
	assert.Equal(t, "sub-1", payload.SubscriptionID)
	assert.Equal(t, int64(7), payload.ProfileID)
}

func TestNotifyInvitationNoSubscribersIsNoop(t *testing.T) {
	queue := &captureEnqueuer{}
	d := NewDispatcher(slog.New(slog.DiscardHandler), &mockRepository{}, queue)

	err := d.NotifyInvitation(context.Background(), "nobody@example.com", "hello", 1)
	require.NoError(t, err)
	assert.Empty(t, queue.tasks)
}

func TestNotifyProfileUsesMemberSubscriptions(t *testing.T) {
	repo := &mockRepository{byProfile: map[int64][]Subscription{
		3: {{ID: "sub-9", Endpoint: "https://push.example.com/9"}},
	}}
	queue := &captureEnqueuer{}
	d := NewDispatcher(slog.New(slog.DiscardHandler), repo, queue)

	err := d.NotifyProfile(context.Background(), 3, "Reminder", "Rent due tomorrow")
	require.NoError(t, err)
	require.Len(t, queue.tasks, 1)

	var payload SendPayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
	assert.Equal(t, "Reminder", payload.Title)
}
