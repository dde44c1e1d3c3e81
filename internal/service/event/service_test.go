package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
)

type fakeOutboxRepo struct {
	created []*model.OutboxEvent
	before  time.Time
	err     error
}

func (r *fakeOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, event)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error {
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.before = before
	return 12, nil
}

func TestEmitStoresPendingEvent(t *testing.T) {
	repo := &fakeOutboxRepo{}
	svc := NewEventService(repo)

	err := svc.Emit(context.Background(), model.EventAdmissionCreated, map[string]int{"id": 7})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	evt := repo.created[0]
	assert.NotEqual(t, uuid.Nil, evt.ID)
	assert.Equal(t, model.EventAdmissionCreated, evt.EventType)
	assert.Equal(t, string(model.OutboxStatusPending), evt.Status)
	assert.JSONEq(t, `{"id":7}`, string(evt.Payload))
}

func TestEmitWrapsRepositoryErrors(t *testing.T) {
	svc := NewEventService(&fakeOutboxRepo{err: errors.New("deadlock")})
	err := svc.Emit(context.Background(), model.EventAdmissionDeleted, 1)
	assert.ErrorContains(t, err, "failed to create outbox event")
}

func TestCleanupProcessedEvents(t *testing.T) {
	repo := &fakeOutboxRepo{}
	svc := NewEventService(repo)
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	n, err := svc.CleanupProcessedEvents(context.Background(), 48*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 12, n)
	assert.Equal(t, now.Add(-48*time.Hour), repo.before)
}
