package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/middleware"
	"github.com/dronebook/marketplace-backend/internal/models"
	"github.com/dronebook/marketplace-backend/internal/services"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookings *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create books a pilot for the calling client
// POST /api/v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}

	booking, err := h.bookings.Create(userCtx.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// List returns the caller's bookings
// GET /api/v1/bookings
func (h *BookingHandler) List(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	bookings, err := h.bookings.ListForUser(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// Respond applies the calling pilot's decision to a booking
// PUT /api/v1/bookings/:id/respond
func (h *BookingHandler) Respond(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.RespondBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}

	booking, err := h.bookings.Respond(userCtx.UserID, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
