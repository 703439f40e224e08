package handler

import (
	"net/http"

	"todoapp/internal/middleware"
	"todoapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// authenticatedUserID pulls the user ID the auth middleware stored in the
// context. Writes the error response itself when the value is missing.
func authenticatedUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}

	userID, ok := value.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return userID, true
}

// respondError maps a service error kind onto an HTTP status.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch service.KindOf(err) {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindForbidden:
		status = http.StatusForbidden
	case service.KindConflict:
		status = http.StatusConflict
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		// Store failures stay opaque to clients
		message = "Internal error"
	}
	c.JSON(status, gin.H{"error": message})
}
