package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-reserve/backend/config"
	"github.com/aura-reserve/backend/internal/auth"
	"github.com/aura-reserve/backend/internal/events"
	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/internal/store/memstore"
	"github.com/aura-reserve/backend/pkg/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	jwt    *auth.JWTService
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mem := memstore.New()
	jwtSvc := auth.NewJWTService("test-secret", 60)
	router := NewRouter(Deps{
		Store:     mem.Bundle(),
		History:   mem.History(),
		Publisher: events.NewRecorderPublisher(mem.History(), nil),
		JWT:       jwtSvc,
		Hasher:    utils.NewPasswordHasher(4),
	})
	return &testServer{t: t, router: router, jwt: jwtSvc}
}

func (s *testServer) do(method, path string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

// seed creates an organization and a resource and returns their ids.
func (s *testServer) seed() (orgID, resourceID uuid.UUID) {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/organizations", gin.H{"name": "Bistro"})
	require.Equal(s.t, http.StatusCreated, code, env.Error)
	org := decode[models.Organization](s.t, env)

	code, env = s.do(http.MethodPost, "/resources", gin.H{"organization_id": org.ID, "name": "Table 4", "capacity": 4})
	require.Equal(s.t, http.StatusCreated, code, env.Error)
	res := decode[models.Resource](s.t, env)
	return org.ID, res.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}

func TestReservationLifecycle(t *testing.T) {
	s := newTestServer(t)
	_, resourceID := s.seed()

	code, env := s.do(http.MethodPost, "/reservations", gin.H{
		"resource_id":     resourceID,
		"start_time":      "2025-03-01T18:00:00Z",
		"end_time":        "2025-03-01T20:00:00Z",
		"guest_last_name": "Smith",
		"guest_contact":   "+1-555-0100",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	smith := decode[models.Reservation](t, env)
	assert.Equal(t, models.StatusConfirmed, smith.Status)
	assert.Nil(t, smith.UserID)

	code, env = s.do(http.MethodPost, "/reservations", gin.H{
		"resource_id":     resourceID,
		"start_time":      "2025-03-01T19:00:00Z",
		"end_time":        "2025-03-01T21:00:00Z",
		"guest_last_name": "Jones",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)

	code, _ = s.do(http.MethodPost, "/reservations", gin.H{
		"resource_id": resourceID,
		"start_time":  "2025-03-01T20:00:00Z",
		"end_time":    "2025-03-01T22:00:00Z",
	})
	assert.Equal(t, http.StatusCreated, code)

	code, env = s.do(http.MethodGet, "/reservations?guest_last_name=Smith", nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[[]models.Reservation](t, env)
	require.Len(t, list, 1)
	assert.Equal(t, smith.ID, list[0].ID)

	code, env = s.do(http.MethodPatch, "/reservations/"+smith.ID.String(), gin.H{"notes": "anniversary"})
	require.Equal(t, http.StatusOK, code, env.Error)
	patched := decode[models.Reservation](t, env)
	require.NotNil(t, patched.Notes)
	assert.Equal(t, "anniversary", *patched.Notes)
	assert.True(t, smith.StartTime.Equal(patched.StartTime))

	code, env = s.do(http.MethodPost, "/reservations/"+smith.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.StatusCancelled, decode[models.Reservation](t, env).Status)
	code, _ = s.do(http.MethodPost, "/reservations/"+smith.ID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodPatch, "/reservations/"+smith.ID.String(), gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodDelete, "/reservations/"+smith.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(http.MethodGet, "/reservations/"+smith.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(http.MethodGet, "/reservations/"+smith.ID.String()+"/history", nil)
	require.Equal(t, http.StatusOK, code)
	history := decode[[]models.ReservationEvent](t, env)
	types := make([]models.EventType, 0, len(history))
	for _, ev := range history {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []models.EventType{
		models.EventReservationCreated,
		models.EventReservationUpdated,
		models.EventReservationCancelled,
		models.EventReservationDeleted,
	}, types)
}

func TestCreateReservation_BadInput(t *testing.T) {
	s := newTestServer(t)
	_, resourceID := s.seed()

	code, _ := s.do(http.MethodPost, "/reservations", gin.H{
		"resource_id": resourceID,
		"start_time":  "2025-03-01T11:00:00Z",
		"end_time":    "2025-03-01T10:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/reservations", gin.H{
		"resource_id": uuid.New(),
		"start_time":  "2025-03-01T10:00:00Z",
		"end_time":    "2025-03-01T11:00:00Z",
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodGet, "/reservations/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/reservations?start=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDeleteOrganization_CascadesOverHTTP(t *testing.T) {
	s := newTestServer(t)
	orgID, resourceID := s.seed()

	code, _ := s.do(http.MethodDelete, "/organizations/"+orgID.String(), nil)
	require.Equal(t, http.StatusNoContent, code)

	code, _ = s.do(http.MethodGet, "/resources/"+resourceID.String(), nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(http.MethodDelete, "/organizations/"+orgID.String(), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDuplicateOrganizationName(t *testing.T) {
	s := newTestServer(t)
	s.seed()
	code, _ := s.do(http.MethodPost, "/organizations", gin.H{"name": "Bistro"})
	assert.Equal(t, http.StatusConflict, code)
}

func TestResourcePatch_ClearsCapacity(t *testing.T) {
	s := newTestServer(t)
	_, resourceID := s.seed()

	code, env := s.do(http.MethodPatch, "/resources/"+resourceID.String(), gin.H{"capacity": nil})
	require.Equal(t, http.StatusOK, code, env.Error)
	res := decode[models.Resource](t, env)
	assert.Nil(t, res.Capacity)
	assert.Equal(t, "Table 4", res.Name)
}

func TestLoginAndBookAsSelf(t *testing.T) {
	s := newTestServer(t)
	orgID, resourceID := s.seed()

	code, env := s.do(http.MethodPost, "/users", gin.H{
		"email":           "Ann@Example.com",
		"password":        "hunter22",
		"organization_id": orgID,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	user := decode[models.User](t, env)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)

	code, _ = s.do(http.MethodPost, "/auth/login", gin.H{"email": "ann@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(http.MethodPost, "/auth/login", gin.H{"email": "ann@example.com", "password": "hunter22"})
	require.Equal(t, http.StatusOK, code, env.Error)
	tok := decode[auth.TokenResponse](t, env)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, 3600, tok.ExpiresIn)
	s.token = tok.Token

	code, env = s.do(http.MethodPost, "/reservations", gin.H{
		"resource_id": resourceID,
		"start_time":  "2025-03-01T10:00:00Z",
		"end_time":    "2025-03-01T11:00:00Z",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	r := decode[models.Reservation](t, env)
	require.NotNil(t, r.UserID)
	assert.Equal(t, user.ID, *r.UserID)

	code, env = s.do(http.MethodGet, "/reservations?user_id="+user.ID.String(), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.Reservation](t, env), 1)
}

func TestInvalidBearerRejected(t *testing.T) {
	s := newTestServer(t)
	s.token = "garbage"
	code, env := s.do(http.MethodGet, "/organizations", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)
}

func TestExportsDisabledWithoutService(t *testing.T) {
	s := newTestServer(t)
	orgID, _ := s.seed()
	code, _ := s.do(http.MethodPost, "/organizations/"+orgID.String()+"/exports", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestOpenBackend_InMemory(t *testing.T) {
	b, err := OpenBackend(context.Background(), config.DatabaseConfig{URL: config.MemoryDSN}, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()
	require.NotNil(t, b.Store.Reservations)
	require.NotNil(t, b.History)
}
