// Package events delivers reservation lifecycle events to interested sinks.
package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/pkg/queue"
)

// Publisher receives committed reservation changes. Delivery is best effort:
// implementations log failures and never block the caller's write.
type Publisher interface {
	Publish(ctx context.Context, ev models.ReservationEvent)
}

// Fanout forwards each event to every publisher in order.
type Fanout []Publisher

// Publish implements Publisher.
func (f Fanout) Publish(ctx context.Context, ev models.ReservationEvent) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, ev)
		}
	}
}

// Nop discards events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, models.ReservationEvent) {}

// Enqueuer is the subset of the job queue used for events.
type Enqueuer interface {
	Enqueue(ctx context.Context, t queue.JobType, payload interface{}) (*queue.Job, error)
}

// QueuePublisher hands events to the background worker for history recording.
type QueuePublisher struct {
	q      Enqueuer
	logger *zap.Logger
}

// NewQueuePublisher creates a publisher backed by the job queue.
func NewQueuePublisher(q Enqueuer, logger *zap.Logger) *QueuePublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueuePublisher{q: q, logger: logger}
}

// Publish implements Publisher.
func (p *QueuePublisher) Publish(ctx context.Context, ev models.ReservationEvent) {
	if _, err := p.q.Enqueue(ctx, queue.JobTypeReservationEvent, ev); err != nil {
		p.logger.Error("enqueue reservation event",
			zap.Error(err),
			zap.String("event", string(ev.Type)),
			zap.String("reservation_id", ev.ReservationID.String()),
		)
	}
}

// Recorder is anything that persists events directly.
type Recorder interface {
	Append(ctx context.Context, ev models.ReservationEvent) error
}

// RecorderPublisher writes events synchronously; used when no queue is configured.
type RecorderPublisher struct {
	r      Recorder
	logger *zap.Logger
}

// NewRecorderPublisher wraps a Recorder.
func NewRecorderPublisher(r Recorder, logger *zap.Logger) *RecorderPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecorderPublisher{r: r, logger: logger}
}

// Publish implements Publisher.
func (p *RecorderPublisher) Publish(ctx context.Context, ev models.ReservationEvent) {
	if err := p.r.Append(ctx, ev); err != nil {
		p.logger.Error("record reservation event", zap.Error(err), zap.String("event", string(ev.Type)))
	}
}
