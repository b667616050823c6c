package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aura-reserve/backend/internal/events"
	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/pkg/queue"
)

// JobSource is the queue surface the worker needs.
type JobSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, string, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// ExportBuilder renders and uploads one export.
type ExportBuilder interface {
	Build(ctx context.Context, p queue.ExportPayload) error
}

// errPermanent marks failures that retrying cannot fix.
var errPermanent = errors.New("permanent job failure")

// Processor dispatches reservation event and export jobs.
type Processor struct {
	source  JobSource
	history events.Recorder
	exports ExportBuilder
	logger  *zap.Logger
	poll    time.Duration
	backoff time.Duration
}

// NewProcessor creates a job processor. exports may be nil when object
// storage is not configured; export jobs then fail permanently.
func NewProcessor(source JobSource, history events.Recorder, exports ExportBuilder, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		source:  source,
		history: history,
		exports: exports,
		logger:  logger,
		poll:    5 * time.Second,
		backoff: queue.RetryBackoff,
	}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeReservationEvent:
		var ev models.ReservationEvent
		if err := job.Decode(&ev); err != nil {
			return fmt.Errorf("%w: %v", errPermanent, err)
		}
		if err := p.history.Append(ctx, ev); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		p.logger.Debug("history recorded", zap.String("event", string(ev.Type)), zap.String("reservation_id", ev.ReservationID.String()))
		return nil
	case queue.JobTypeReservationExport:
		if p.exports == nil {
			return fmt.Errorf("%w: exports not configured", errPermanent)
		}
		var payload queue.ExportPayload
		if err := job.Decode(&payload); err != nil {
			return fmt.Errorf("%w: %v", errPermanent, err)
		}
		if err := p.exports.Build(ctx, payload); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("%w: %v", errPermanent, err)
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("%w: unknown job type %q", errPermanent, job.Type)
}

// Run starts the worker loop: dequeue, process, retry on error. It returns when ctx is done.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping")
			return
		default:
		}

		job, _, err := p.source.Dequeue(ctx, p.poll)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			if errors.Is(err, errPermanent) {
				p.logger.Error("job dropped", zap.String("job_id", job.ID), zap.Error(err))
				continue
			}
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.source.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *Processor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
