// Package exports produces CSV snapshots of an organization's reservations
// in object storage. Requests are queued; the worker builds the file.
package exports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/internal/store"
	"github.com/aura-reserve/backend/pkg/queue"
	"github.com/aura-reserve/backend/pkg/storage"
)

// ObjectStore is the subset of storage.S3 used for exports.
type ObjectStore interface {
	ExportsBucket() string
	PresignExpire() time.Duration
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
	GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}

// Enqueuer hands export jobs to the worker.
type Enqueuer interface {
	EnqueueExport(ctx context.Context, payload queue.ExportPayload) error
}

// Ticket is returned when an export is accepted.
type Ticket struct {
	ExportID       uuid.UUID `json:"export_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Status         string    `json:"status"`
}

// Link is returned once an export is ready.
type Link struct {
	ExportID  uuid.UUID `json:"export_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service requests, builds and locates exports.
type Service struct {
	st      store.Store
	objects ObjectStore
	jobs    Enqueuer
	logger  *zap.Logger
}

// NewService creates an export service. jobs may be nil in the worker.
func NewService(st store.Store, objects ObjectStore, jobs Enqueuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{st: st, objects: objects, jobs: jobs, logger: logger}
}

// Request queues an export for an existing organization.
func (s *Service) Request(ctx context.Context, orgID uuid.UUID) (*Ticket, error) {
	if _, err := s.st.Organizations.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	payload := queue.ExportPayload{
		ExportID:       uuid.New(),
		OrganizationID: orgID,
		RequestedAt:    time.Now().UTC(),
	}
	if err := s.jobs.EnqueueExport(ctx, payload); err != nil {
		return nil, fmt.Errorf("enqueue export: %w", err)
	}
	s.logger.Info("export requested",
		zap.String("export_id", payload.ExportID.String()),
		zap.String("organization_id", orgID.String()),
	)
	return &Ticket{ExportID: payload.ExportID, OrganizationID: orgID, Status: "queued"}, nil
}

// Link returns a presigned URL for a finished export, or ErrNotFound while
// the file does not exist yet.
func (s *Service) Link(ctx context.Context, orgID, exportID uuid.UUID) (*Link, error) {
	key := storage.ExportKey(orgID.String(), exportID.String())
	ok, err := s.objects.Exists(ctx, s.objects.ExportsBucket(), key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("export %s: %w", exportID, models.ErrNotFound)
	}
	ttl := s.objects.PresignExpire()
	url, err := s.objects.GeneratePresignedDownloadURL(ctx, s.objects.ExportsBucket(), key, ttl)
	if err != nil {
		return nil, err
	}
	return &Link{ExportID: exportID, URL: url, ExpiresAt: time.Now().UTC().Add(ttl)}, nil
}

// Build renders every reservation of the organization's resources and
// uploads the CSV. An organization deleted since the request is an error
// wrapping ErrNotFound.
func (s *Service) Build(ctx context.Context, p queue.ExportPayload) error {
	if _, err := s.st.Organizations.GetByID(ctx, p.OrganizationID); err != nil {
		return err
	}
	orgID := p.OrganizationID
	resources, err := s.st.Resources.List(ctx, models.ResourceFilter{OrganizationID: &orgID})
	if err != nil {
		return fmt.Errorf("list resources: %w", err)
	}
	var rows []Row
	for _, res := range resources {
		resID := res.ID
		list, err := s.st.Reservations.List(ctx, models.ReservationFilter{ResourceID: &resID})
		if err != nil {
			return fmt.Errorf("list reservations: %w", err)
		}
		for _, r := range list {
			rows = append(rows, Row{Resource: res, Reservation: r})
		}
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return fmt.Errorf("render csv: %w", err)
	}
	key := storage.ExportKey(orgID.String(), p.ExportID.String())
	if err := s.objects.Upload(ctx, s.objects.ExportsBucket(), key, storage.ContentTypeCSV, &buf); err != nil {
		return err
	}
	s.logger.Info("export written",
		zap.String("export_id", p.ExportID.String()),
		zap.String("key", key),
		zap.Int("rows", len(rows)),
	)
	return nil
}
