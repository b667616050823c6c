package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUIDParam parses a path parameter as a UUID, writing a 400 when malformed.
func UUIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		BadRequest(c, "invalid "+label+" id")
		return uuid.Nil, false
	}
	return id, true
}

// UUIDQuery parses an optional query parameter as a UUID. A missing value
// yields nil; a malformed one writes a 400.
func UUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		BadRequest(c, "invalid "+name)
		return nil, false
	}
	return &id, true
}
