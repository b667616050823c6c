package resources

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/internal/store"
	"github.com/aura-reserve/backend/internal/validate"
)

// Service implements resource CRUD.
type Service struct {
	repo     store.Resources
	orgs     store.Organizations
	validate *validate.Validator
	logger   *zap.Logger
}

// NewService creates a resource service.
func NewService(repo store.Resources, orgs store.Organizations, v *validate.Validator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, orgs: orgs, validate: v, logger: logger}
}

// Create stores a resource under an existing organization.
func (s *Service) Create(ctx context.Context, in models.CreateResourceInput) (*models.Resource, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.orgs.GetByID(ctx, in.OrganizationID); err != nil {
		return nil, err
	}
	res := &models.Resource{
		OrganizationID: in.OrganizationID,
		Name:           in.Name,
		Type:           in.Type,
		Capacity:       in.Capacity,
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	s.logger.Info("resource created",
		zap.String("resource_id", res.ID.String()),
		zap.String("organization_id", res.OrganizationID.String()),
	)
	return res, nil
}

// Get returns one resource.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists returns nil when the resource is present.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) error {
	_, err := s.repo.GetByID(ctx, id)
	return err
}

// List returns resources matching filter.
func (s *Service) List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error) {
	return s.repo.List(ctx, filter)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch models.ResourcePatch) (*models.Resource, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(res)
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, fmt.Errorf("update resource: %w", err)
	}
	return res, nil
}

// Delete removes a resource and its reservations.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("resource deleted", zap.String("resource_id", id.String()))
	return nil
}
