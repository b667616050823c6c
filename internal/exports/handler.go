package exports

import (
	"github.com/gin-gonic/gin"

	"github.com/aura-reserve/backend/pkg/response"
)

// Handler handles export HTTP endpoints. A nil service means exports are
// not configured on this instance.
type Handler struct {
	svc *Service
}

// NewHandler creates an exports handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Request handles POST /organizations/:id/exports.
func (h *Handler) Request(c *gin.Context) {
	if h.svc == nil {
		response.ServiceUnavailable(c, "exports are not configured")
		return
	}
	orgID, ok := response.UUIDParam(c, "id", "organization")
	if !ok {
		return
	}
	ticket, err := h.svc.Request(c.Request.Context(), orgID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, ticket)
}

// Get handles GET /organizations/:id/exports/:exportId.
func (h *Handler) Get(c *gin.Context) {
	if h.svc == nil {
		response.ServiceUnavailable(c, "exports are not configured")
		return
	}
	orgID, ok := response.UUIDParam(c, "id", "organization")
	if !ok {
		return
	}
	exportID, ok := response.UUIDParam(c, "exportId", "export")
	if !ok {
		return
	}
	link, err := h.svc.Link(c.Request.Context(), orgID, exportID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, link)
}
