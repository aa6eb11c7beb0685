package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/middleware"
	"github.com/dronebook/marketplace-backend/internal/models"
	"github.com/dronebook/marketplace-backend/internal/services"
)

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	payments       *services.PaymentService
	publishableKey string
	currency       string
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *services.PaymentService, publishableKey, currency string) *PaymentHandler {
	return &PaymentHandler{
		payments:       payments,
		publishableKey: publishableKey,
		currency:       currency,
	}
}

// Config returns the provider settings the payment UI needs
// GET /api/v1/payments/config
func (h *PaymentHandler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"publishable_key": h.publishableKey,
		"currency":        h.currency,
	})
}

// CreateIntent initiates a payment for a confirmed booking
// POST /api/v1/payments/create-intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}

	resp, err := h.payments.CreateIntent(userCtx.UserID, req.BookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Confirm reconciles a payment with the provider's authoritative status
// POST /api/v1/payments/confirm
func (h *PaymentHandler) Confirm(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}

	payment, err := h.payments.Confirm(userCtx.UserID, req.PaymentIntentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// GetStatus reports a booking's payment state
// GET /api/v1/payments/status/:bookingId
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	status, err := h.payments.GetStatus(userCtx.UserID, c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
