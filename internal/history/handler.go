package history

import (
	"github.com/gin-gonic/gin"

	"github.com/aura-reserve/backend/pkg/response"
)

// Handler serves reservation history.
type Handler struct {
	store Store
}

// NewHandler creates a history handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// List handles GET /reservations/:id/history. History survives deletion of
// the reservation, so an unknown id yields an empty list rather than 404.
func (h *Handler) List(c *gin.Context) {
	id, ok := response.UUIDParam(c, "id", "reservation")
	if !ok {
		return
	}
	list, err := h.store.ListByReservation(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}
