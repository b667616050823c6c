package organizations

import (
	"github.com/gin-gonic/gin"

	"github.com/aura-reserve/backend/internal/models"
	"github.com/aura-reserve/backend/pkg/response"
)

// Handler handles organization HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an organizations handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /organizations.
func (h *Handler) Create(c *gin.Context) {
	var body models.CreateOrganizationInput
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	org, err := h.svc.Create(c.Request.Context(), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, org)
}

// List handles GET /organizations.
func (h *Handler) List(c *gin.Context) {
	orgs, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, orgs)
}

// Get handles GET /organizations/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id", "organization")
	if !ok {
		return
	}
	org, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, org)
}

// Update handles PATCH /organizations/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id", "organization")
	if !ok {
		return
	}
	var patch models.OrganizationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	org, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, org)
}

// Delete handles DELETE /organizations/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id", "organization")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
