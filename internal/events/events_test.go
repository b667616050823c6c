package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/pkg/queue"
)

type capture struct{ got []models.EventType }

func (c *capture) Publish(_ context.Context, ev models.ReservationEvent) { c.got = append(c.got, ev.Type) }

type fakeEnqueuer struct {
	jobs []*queue.Job
	err  error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, t queue.JobType, payload interface{}) (*queue.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	job, err := queue.NewJob(t, payload)
	if err != nil {
		return nil, err
	}
	f.jobs = append(f.jobs, job)
	return job, nil
}

type failingRecorder struct{ calls int }

func (r *failingRecorder) Append(context.Context, models.ReservationEvent) error {
	r.calls++
	return errors.New("disk full")
}

func event() models.ReservationEvent {
	return models.NewReservationEvent(models.EventReservationCreated, models.Reservation{ID: uuid.New(), ResourceID: uuid.New()})
}

func TestFanout_DeliversToEverySinkSkippingNil(t *testing.T) {
	a, b := &capture{}, &capture{}
	Fanout{a, nil, Nop{}, b}.Publish(context.Background(), event())
	assert.Equal(t, []models.EventType{models.EventReservationCreated}, a.got)
	assert.Equal(t, a.got, b.got)
}

func TestQueuePublisher_EnqueuesEventJob(t *testing.T) {
	q := &fakeEnqueuer{}
	ev := event()
	NewQueuePublisher(q, nil).Publish(context.Background(), ev)

	require.Len(t, q.jobs, 1)
	assert.Equal(t, queue.JobTypeReservationEvent, q.jobs[0].Type)
	var decoded models.ReservationEvent
	require.NoError(t, q.jobs[0].Decode(&decoded))
	assert.Equal(t, ev.ID, decoded.ID)
}

func TestPublishersSwallowErrors(t *testing.T) {
	NewQueuePublisher(&fakeEnqueuer{err: errors.New("redis down")}, nil).Publish(context.Background(), event())

	rec := &failingRecorder{}
	NewRecorderPublisher(rec, nil).Publish(context.Background(), event())
	assert.Equal(t, 1, rec.calls)
}
