package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/middleware"
	"github.com/dronebook/marketplace-backend/internal/models"
	"github.com/dronebook/marketplace-backend/internal/services"
)

// ReviewHandler handles pilot review HTTP requests
type ReviewHandler struct {
	reviews *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Create leaves a review on a pilot
// POST /api/v1/pilots/:id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}

	review, err := h.reviews.Create(userCtx.UserID, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// List returns a pilot's reviews
// GET /api/v1/pilots/:id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.reviews.ListForPilot(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
