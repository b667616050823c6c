package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/internal/store"
	"github.com/aura-reserve/backend/internal/validate"
	"github.com/aura-reserve/backend/pkg/utils"
)

// Service implements user CRUD. Passwords are hashed before they reach the store.
type Service struct {
	repo     store.Users
	orgs     store.Organizations
	hasher   utils.PasswordHasher
	validate *validate.Validator
	logger   *zap.Logger
}

// NewService creates a user service.
func NewService(repo store.Users, orgs store.Organizations, hasher utils.PasswordHasher, v *validate.Validator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, orgs: orgs, hasher: hasher, validate: v, logger: logger}
}

// Create registers a user. Email is stored lower-cased.
func (s *Service) Create(ctx context.Context, in models.CreateUserInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if in.OrganizationID != nil {
		if _, err := s.orgs.GetByID(ctx, *in.OrganizationID); err != nil {
			return nil, err
		}
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Email:          in.Email,
		FullName:       in.FullName,
		PasswordHash:   hash,
		Role:           models.RoleUser,
		OrganizationID: in.OrganizationID,
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user created", zap.String("user_id", u.ID.String()))
	return u, nil
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns users matching filter.
func (s *Service) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	return s.repo.List(ctx, filter)
}

// Update applies a partial update, re-hashing the password when supplied.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(u)
	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Delete removes a user. Their reservations remain with user_id cleared.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}
