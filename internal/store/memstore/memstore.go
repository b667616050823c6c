// Package memstore is an in-process implementation of the store contracts.
// All state sits behind one mutex; deletes apply the same cascade rules as
// the PostgreSQL schema.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/internal/store"
)

type memoryState struct {
	organizations map[uuid.UUID]models.Organization
	resources     map[uuid.UUID]models.Resource
	users         map[uuid.UUID]models.User
	reservations  map[uuid.UUID]models.Reservation
	events        []models.ReservationEvent
}

// Store holds the in-memory state. Use Bundle to obtain the repositories.
type Store struct {
	mu    sync.Mutex
	state memoryState
	now   func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		state: memoryState{
			organizations: map[uuid.UUID]models.Organization{},
			resources:     map[uuid.UUID]models.Resource{},
			users:         map[uuid.UUID]models.User{},
			reservations:  map[uuid.UUID]models.Reservation{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Bundle exposes the store through the repository contracts.
func (s *Store) Bundle() store.Store {
	return store.Store{
		Organizations: s.Organizations(),
		Resources:     s.Resources(),
		Users:         s.Users(),
		Reservations:  s.Reservations(),
	}
}

func (s *Store) Organizations() store.Organizations { return organizations{s} }
func (s *Store) Resources() store.Resources         { return resources{s} }
func (s *Store) Users() store.Users                 { return users{s} }
func (s *Store) Reservations() store.Reservations   { return reservations{s} }

// History returns the reservation event log view.
func (s *Store) History() *History { return &History{s} }

func notFound(kind string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
}

// deleteResourceLocked removes a resource and its reservations.
func (s *Store) deleteResourceLocked(id uuid.UUID) {
	delete(s.state.resources, id)
	for rid, r := range s.state.reservations {
		if r.ResourceID == id {
			delete(s.state.reservations, rid)
		}
	}
}

// deleteUserLocked removes a user and detaches their reservations.
func (s *Store) deleteUserLocked(id uuid.UUID) {
	delete(s.state.users, id)
	for rid, r := range s.state.reservations {
		if r.UserID != nil && *r.UserID == id {
			r.UserID = nil
			s.state.reservations[rid] = r
		}
	}
}

type organizations struct{ s *Store }

func (o organizations) Create(_ context.Context, org *models.Organization) error {
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.organizations {
		if existing.Name == org.Name {
			return fmt.Errorf("organization name %q taken: %w", org.Name, models.ErrIntegrityViolation)
		}
	}
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	org.CreatedAt = s.now()
	org.UpdatedAt = org.CreatedAt
	s.state.organizations[org.ID] = *org
	return nil
}

func (o organizations) GetByID(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.state.organizations[id]
	if !ok {
		return nil, notFound("organization", id)
	}
	return &org, nil
}

func (o organizations) List(_ context.Context) ([]models.Organization, error) {
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Organization, 0, len(s.state.organizations))
	for _, org := range s.state.organizations {
		out = append(out, org)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (o organizations) Update(_ context.Context, org *models.Organization) error {
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.organizations[org.ID]; !ok {
		return notFound("organization", org.ID)
	}
	for id, existing := range s.state.organizations {
		if id != org.ID && existing.Name == org.Name {
			return fmt.Errorf("organization name %q taken: %w", org.Name, models.ErrIntegrityViolation)
		}
	}
	org.UpdatedAt = s.now()
	s.state.organizations[org.ID] = *org
	return nil
}

func (o organizations) Delete(_ context.Context, id uuid.UUID) error {
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.organizations[id]; !ok {
		return notFound("organization", id)
	}
	for rid, res := range s.state.resources {
		if res.OrganizationID == id {
			s.deleteResourceLocked(rid)
		}
	}
	for uid, u := range s.state.users {
		if u.OrganizationID != nil && *u.OrganizationID == id {
			s.deleteUserLocked(uid)
		}
	}
	delete(s.state.organizations, id)
	return nil
}

type resources struct{ s *Store }

func (r resources) Create(_ context.Context, res *models.Resource) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.organizations[res.OrganizationID]; !ok {
		return fmt.Errorf("resource organization %s: %w", res.OrganizationID, models.ErrIntegrityViolation)
	}
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	res.CreatedAt = s.now()
	res.UpdatedAt = res.CreatedAt
	s.state.resources[res.ID] = *res
	return nil
}

func (r resources) GetByID(_ context.Context, id uuid.UUID) (*models.Resource, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.state.resources[id]
	if !ok {
		return nil, notFound("resource", id)
	}
	return &res, nil
}

func (r resources) List(_ context.Context, filter models.ResourceFilter) ([]models.Resource, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Resource{}
	for _, res := range s.state.resources {
		if filter.Match(res) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r resources) Update(_ context.Context, res *models.Resource) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.resources[res.ID]; !ok {
		return notFound("resource", res.ID)
	}
	res.UpdatedAt = s.now()
	s.state.resources[res.ID] = *res
	return nil
}

func (r resources) Delete(_ context.Context, id uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.resources[id]; !ok {
		return notFound("resource", id)
	}
	s.deleteResourceLocked(id)
	return nil
}

type users struct{ s *Store }

func (u users) checkLocked(user *models.User) error {
	s := u.s
	for id, existing := range s.state.users {
		if id != user.ID && existing.Email == user.Email {
			return fmt.Errorf("email %q taken: %w", user.Email, models.ErrIntegrityViolation)
		}
	}
	if user.OrganizationID != nil {
		if _, ok := s.state.organizations[*user.OrganizationID]; !ok {
			return fmt.Errorf("user organization %s: %w", *user.OrganizationID, models.ErrIntegrityViolation)
		}
	}
	return nil
}

func (u users) Create(_ context.Context, user *models.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if err := u.checkLocked(user); err != nil {
		return err
	}
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	s.state.users[user.ID] = *user
	return nil
}

func (u users) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.state.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &user, nil
}

func (u users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.state.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, models.ErrNotFound)
}

func (u users) List(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, user := range s.state.users {
		if filter.Match(user) {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (u users) Update(_ context.Context, user *models.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.users[user.ID]; !ok {
		return notFound("user", user.ID)
	}
	if err := u.checkLocked(user); err != nil {
		return err
	}
	user.UpdatedAt = s.now()
	s.state.users[user.ID] = *user
	return nil
}

func (u users) Delete(_ context.Context, id uuid.UUID) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.users[id]; !ok {
		return notFound("user", id)
	}
	s.deleteUserLocked(id)
	return nil
}

type reservations struct{ s *Store }

func (r reservations) GetByID(_ context.Context, id uuid.UUID) (*models.Reservation, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.state.reservations[id]
	if !ok {
		return nil, notFound("reservation", id)
	}
	return &res, nil
}

func (r reservations) List(_ context.Context, filter models.ReservationFilter) ([]models.Reservation, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Reservation{}
	for _, res := range s.state.reservations {
		if filter.Match(res) {
			out = append(out, res)
		}
	}
	sortReservations(out)
	return out, nil
}

func sortReservations(out []models.Reservation) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
}

func (r reservations) SetStatus(_ context.Context, id uuid.UUID, status models.Status) (*models.Reservation, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.state.reservations[id]
	if !ok {
		return nil, notFound("reservation", id)
	}
	res.Status = status
	res.UpdatedAt = s.now()
	s.state.reservations[id] = res
	return &res, nil
}

func (r reservations) Delete(_ context.Context, id uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.reservations[id]; !ok {
		return notFound("reservation", id)
	}
	delete(s.state.reservations, id)
	return nil
}

// WithResourceLock holds the store mutex for the whole of fn. Writes are
// staged and only become visible when fn returns nil.
func (r reservations) WithResourceLock(ctx context.Context, resourceID uuid.UUID, fn func(ctx context.Context, tx store.ReservationTx) error) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.resources[resourceID]; !ok {
		return notFound("resource", resourceID)
	}
	tx := &reservationTx{s: s, staged: map[uuid.UUID]models.Reservation{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, res := range tx.staged {
		s.state.reservations[id] = res
	}
	return nil
}

type reservationTx struct {
	s      *Store
	staged map[uuid.UUID]models.Reservation
}

func (tx *reservationTx) lookup(id uuid.UUID) (models.Reservation, bool) {
	if res, ok := tx.staged[id]; ok {
		return res, true
	}
	res, ok := tx.s.state.reservations[id]
	return res, ok
}

func (tx *reservationTx) GetByID(_ context.Context, id uuid.UUID) (*models.Reservation, error) {
	res, ok := tx.lookup(id)
	if !ok {
		return nil, notFound("reservation", id)
	}
	return &res, nil
}

func (tx *reservationTx) HasConflict(_ context.Context, q models.ConflictQuery) (bool, error) {
	for id := range tx.s.state.reservations {
		if _, ok := tx.staged[id]; ok {
			continue
		}
		if q.Collides(tx.s.state.reservations[id]) {
			return true, nil
		}
	}
	for _, res := range tx.staged {
		if q.Collides(res) {
			return true, nil
		}
	}
	return false, nil
}

func (tx *reservationTx) checkRefs(res *models.Reservation) error {
	if _, ok := tx.s.state.resources[res.ResourceID]; !ok {
		return fmt.Errorf("reservation resource %s: %w", res.ResourceID, models.ErrIntegrityViolation)
	}
	if res.UserID != nil {
		if _, ok := tx.s.state.users[*res.UserID]; !ok {
			return fmt.Errorf("reservation user %s: %w", *res.UserID, models.ErrIntegrityViolation)
		}
	}
	return nil
}

func (tx *reservationTx) Insert(_ context.Context, res *models.Reservation) error {
	if err := tx.checkRefs(res); err != nil {
		return err
	}
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	res.CreatedAt = tx.s.now()
	res.UpdatedAt = res.CreatedAt
	tx.staged[res.ID] = *res
	return nil
}

func (tx *reservationTx) Update(_ context.Context, res *models.Reservation) error {
	if _, ok := tx.lookup(res.ID); !ok {
		return notFound("reservation", res.ID)
	}
	if err := tx.checkRefs(res); err != nil {
		return err
	}
	res.UpdatedAt = tx.s.now()
	tx.staged[res.ID] = *res
	return nil
}

// History is the reservation event log.
type History struct{ s *Store }

// Append records an event. Re-appending an event id is a no-op.
func (h *History) Append(_ context.Context, ev models.ReservationEvent) error {
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.events {
		if existing.ID == ev.ID {
			return nil
		}
	}
	s.state.events = append(s.state.events, ev)
	return nil
}

// ListByReservation returns the events for one reservation, oldest first.
func (h *History) ListByReservation(_ context.Context, reservationID uuid.UUID) ([]models.ReservationEvent, error) {
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ReservationEvent{}
	for _, ev := range s.state.events {
		if ev.ReservationID == reservationID {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}
