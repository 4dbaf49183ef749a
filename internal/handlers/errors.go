package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railsetu/railway-reservation-backend/internal/models"
)

// respondError translates a typed domain error into an HTTP response.
// Anything outside the domain taxonomy is an infrastructure failure.
func respondError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	var notFoundErr *models.NotFoundError
	var capacityErr *models.CapacityError
	var windowErr *models.WindowViolationError
	var overCancelErr *models.OverCancelError
	var conflictErr *models.ConflictError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &capacityErr):
		body := gin.H{
			"error":     capacityErr.Error(),
			"requested": capacityErr.Requested,
			"available": capacityErr.Available,
		}
		if len(capacityErr.TakenSeats) > 0 {
			body["taken_seats"] = capacityErr.TakenSeats
		}
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &windowErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": windowErr.Error()})
	case errors.As(err, &overCancelErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": overCancelErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error(), "retryable": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
