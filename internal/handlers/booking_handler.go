package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/railsetu/railway-reservation-backend/internal/middleware"
	"github.com/railsetu/railway-reservation-backend/internal/models"
	"github.com/railsetu/railway-reservation-backend/internal/services"
)

// BookingHandler handles booking endpoints
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBooking creates a new seat booking
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	receipt, err := h.bookingService.Book(userCtx.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// GetBooking retrieves one of the caller's bookings
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	booking, err := h.bookingService.GetBooking(userCtx.UserID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListBookings retrieves the caller's bookings
// GET /api/v1/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookings, err := h.bookingService.ListBookings(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// CancelBooking releases seats from one of the caller's bookings
// POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	receipt, err := h.bookingService.Cancel(userCtx.UserID, c.Param("id"), req.SeatsToCancel)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// SeatAvailability returns the per-seat status map for a train and date
// GET /api/v1/trains/:id/seats?date=2026-09-15
func (h *BookingHandler) SeatAvailability(c *gin.Context) {
	travelDate, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
		return
	}

	seats, err := h.bookingService.SeatAvailability(c.Param("id"), travelDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"seats": seats})
}

// AvailableSeats returns the remaining capacity for a train and date
// GET /api/v1/trains/:id/availability?date=2026-09-15
func (h *BookingHandler) AvailableSeats(c *gin.Context) {
	travelDate, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
		return
	}

	available, err := h.bookingService.AvailableSeats(c.Param("id"), travelDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"train_id":        c.Param("id"),
		"travel_date":     travelDate.Format("2006-01-02"),
		"available_seats": available,
	})
}

// TrainManifest returns the confirmed bookings for a train and date
// GET /api/v1/admin/trains/:id/bookings?date=2026-09-15
func (h *BookingHandler) TrainManifest(c *gin.Context) {
	travelDate, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
		return
	}

	bookings, err := h.bookingService.TrainManifest(c.Param("id"), travelDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}
