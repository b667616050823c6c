package users

import (
	"github.com/gin-gonic/gin"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/pkg/response"
)

// Handler handles user HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a users handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /users.
func (h *Handler) Create(c *gin.Context) {
	var body models.CreateUserInput
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	u, err := h.svc.Create(c.Request.Context(), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, u)
}

// List handles GET /users?organization_id=.
func (h *Handler) List(c *gin.Context) {
	orgID, ok := response.UUIDQuery(c, "organization_id")
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), models.UserFilter{OrganizationID: orgID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /users/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id", "user")
	if !ok {
		return
	}
	u, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// Update handles PATCH /users/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id", "user")
	if !ok {
		return
	}
	var patch models.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	u, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// Delete handles DELETE /users/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id", "user")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
