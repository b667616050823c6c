package organizations

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

// Service implements organization CRUD.
type Service struct {
	repo     store.Organizations
	validate *validate.Validator
	logger   *zap.Logger
}

// NewService creates an organization service.
func NewService(repo store.Organizations, v *validate.Validator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, validate: v, logger: logger}
}

// Create validates and stores a new organization.
func (s *Service) Create(ctx context.Context, in models.CreateOrganizationInput) (*models.Organization, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	org := &models.Organization{Name: in.Name}
	if err := s.repo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	s.logger.Info("organization created", zap.String("organization_id", org.ID.String()))
	return org, nil
}

// Get returns one organization.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all organizations ordered by name.
func (s *Service) List(ctx context.Context) ([]models.Organization, error) {
	return s.repo.List(ctx)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch models.OrganizationPatch) (*models.Organization, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}
	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(org)
	if err := s.repo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}
	return org, nil
}

// Delete removes an organization together with its resources, users and
// the reservations on those resources.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("organization deleted", zap.String("organization_id", id.String()))
	return nil
}
