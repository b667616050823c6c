package reservations

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aura-reserve/backend/internal/middleware"
	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/pkg/response"
)

// Handler handles reservation HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a reservations handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /reservations. An authenticated caller who omits
// user_id books as themselves.
func (h *Handler) Create(c *gin.Context) {
	var body models.CreateReservationInput
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if body.UserID == nil {
		if uid, ok := middleware.CurrentUserID(c); ok {
			body.UserID = &uid
		}
	}
	r, err := h.svc.Create(c.Request.Context(), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, r)
}

// List handles GET /reservations with optional resource_id, user_id, start,
// end (RFC3339) and guest_last_name filters.
func (h *Handler) List(c *gin.Context) {
	var f models.ReservationFilter
	var ok bool
	if f.ResourceID, ok = response.UUIDQuery(c, "resource_id"); !ok {
		return
	}
	if f.UserID, ok = response.UUIDQuery(c, "user_id"); !ok {
		return
	}
	if f.Start, ok = timeQuery(c, "start"); !ok {
		return
	}
	if f.End, ok = timeQuery(c, "end"); !ok {
		return
	}
	if name, present := c.GetQuery("guest_last_name"); present {
		f.GuestLastName = &name
	}
	list, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

func timeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		response.BadRequest(c, name+" must be an RFC3339 timestamp with offset")
		return nil, false
	}
	t = t.UTC()
	return &t, true
}

// Get handles GET /reservations/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id", "reservation")
	if !ok {
		return
	}
	r, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, r)
}

// Update handles PATCH /reservations/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id", "reservation")
	if !ok {
		return
	}
	var patch models.ReservationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	r, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, r)
}

// Cancel handles POST /reservations/:id/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id", "reservation")
	if !ok {
		return
	}
	r, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, r)
}

// Delete handles DELETE /reservations/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id", "reservation")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
