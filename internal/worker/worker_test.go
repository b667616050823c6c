package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/pkg/queue"
)

type fakeRecorder struct {
	mu     sync.Mutex
	events []models.ReservationEvent
	err    error
}

func (r *fakeRecorder) Append(_ context.Context, ev models.ReservationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, ev)
	return nil
}

type fakeBuilder struct {
	err      error
	payloads []queue.ExportPayload
}

func (b *fakeBuilder) Build(_ context.Context, p queue.ExportPayload) error {
	b.payloads = append(b.payloads, p)
	return b.err
}

type fakeSource struct {
	jobs    chan *queue.Job
	retried chan *queue.Job
}

func newFakeSource(jobs ...*queue.Job) *fakeSource {
	s := &fakeSource{jobs: make(chan *queue.Job, len(jobs)), retried: make(chan *queue.Job, 8)}
	for _, j := range jobs {
		s.jobs <- j
	}
	return s
}

func (s *fakeSource) Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, string, error) {
	select {
	case j := <-s.jobs:
		return j, "test", nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	case <-time.After(timeout):
		return nil, "", nil
	}
}

func (s *fakeSource) Retry(_ context.Context, job *queue.Job) error {
	job.Attempt++
	s.retried <- job
	return nil
}

func eventJob(t *testing.T) (*queue.Job, models.ReservationEvent) {
	t.Helper()
	ev := models.NewReservationEvent(models.EventReservationCreated, models.Reservation{ID: uuid.New(), ResourceID: uuid.New()})
	job, err := queue.NewJob(queue.JobTypeReservationEvent, ev)
	require.NoError(t, err)
	return job, ev
}

func TestProcess_RecordsEvent(t *testing.T) {
	rec := &fakeRecorder{}
	p := NewProcessor(newFakeSource(), rec, nil, nil)
	job, ev := eventJob(t)

	require.NoError(t, p.Process(context.Background(), job))
	require.Len(t, rec.events, 1)
	assert.Equal(t, ev.ID, rec.events[0].ID)
	assert.Equal(t, ev.ReservationID, rec.events[0].ReservationID)
}

func TestProcess_ExportFailures(t *testing.T) {
	payload := queue.ExportPayload{ExportID: uuid.New(), OrganizationID: uuid.New()}
	job, err := queue.NewJob(queue.JobTypeReservationExport, payload)
	require.NoError(t, err)

	p := NewProcessor(newFakeSource(), &fakeRecorder{}, nil, nil)
	assert.ErrorIs(t, p.Process(context.Background(), job), errPermanent, "exports not configured")

	gone := &fakeBuilder{err: models.ErrNotFound}
	p = NewProcessor(newFakeSource(), &fakeRecorder{}, gone, nil)
	assert.ErrorIs(t, p.Process(context.Background(), job), errPermanent, "organization deleted")

	flaky := &fakeBuilder{err: errors.New("s3 unavailable")}
	p = NewProcessor(newFakeSource(), &fakeRecorder{}, flaky, nil)
	err = p.Process(context.Background(), job)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errPermanent)
	require.Len(t, flaky.payloads, 1)
	assert.Equal(t, payload.ExportID, flaky.payloads[0].ExportID)
}

func TestProcess_UnknownOrMalformedJobsArePermanent(t *testing.T) {
	p := NewProcessor(newFakeSource(), &fakeRecorder{}, nil, nil)

	err := p.Process(context.Background(), &queue.Job{Type: "mystery"})
	assert.ErrorIs(t, err, errPermanent)

	err = p.Process(context.Background(), &queue.Job{Type: queue.JobTypeReservationEvent, Payload: []byte(`"nope"`)})
	assert.ErrorIs(t, err, errPermanent)
}

func TestRun_RetriesTransientFailures(t *testing.T) {
	job, _ := eventJob(t)
	src := newFakeSource(job)
	rec := &fakeRecorder{err: errors.New("database down")}
	p := NewProcessor(src, rec, nil, nil)
	p.poll = 10 * time.Millisecond
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case retried := <-src.retried:
		assert.Equal(t, job.ID, retried.ID)
		assert.Equal(t, 1, retried.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRun_DropsPermanentFailures(t *testing.T) {
	src := newFakeSource(&queue.Job{ID: "j1", Type: "mystery"})
	p := NewProcessor(src, &fakeRecorder{}, nil, nil)
	p.poll = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	assert.Empty(t, src.retried)
}
