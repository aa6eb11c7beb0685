package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/database"
	"github.com/dronebook/marketplace-backend/internal/middleware"
	"github.com/dronebook/marketplace-backend/internal/models"
)

// PilotHandler handles pilot profile browsing and self-service updates
type PilotHandler struct {
	profiles *database.PilotProfileRepository
	logger   *logrus.Logger
}

// NewPilotHandler creates a new pilot handler
func NewPilotHandler(profiles *database.PilotProfileRepository, logger *logrus.Logger) *PilotHandler {
	return &PilotHandler{
		profiles: profiles,
		logger:   logger,
	}
}

// List returns all pilot profiles
// GET /api/v1/pilots
func (h *PilotHandler) List(c *gin.Context) {
	profiles, err := h.profiles.List()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pilots": profiles})
}

// Get returns one pilot profile with its packages and availability
// GET /api/v1/pilots/:id
func (h *PilotHandler) Get(c *gin.Context) {
	profile, err := h.profiles.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	services, err := h.profiles.ListServicePackages(profile.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	profile.Services = services

	availability, err := h.profiles.ListAvailability(profile.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	profile.Availability = availability

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates the caller's own pilot profile. Rate changes
// never touch existing bookings.
// PUT /api/v1/profile
func (h *PilotHandler) UpdateProfile(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}

	profile, err := h.profiles.GetByUserID(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	profile.Name = req.Name
	profile.Tagline = req.Tagline
	profile.Location = req.Location
	profile.Bio = req.Bio
	profile.HourlyRate = req.HourlyRate
	profile.Phone = req.Phone
	profile.Latitude = req.Latitude
	profile.Longitude = req.Longitude

	if err := h.profiles.Update(profile); err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithField("profile_id", profile.ID).Info("Pilot profile updated")

	c.JSON(http.StatusOK, profile)
}

// CreateServicePackage adds a package to the caller's profile
// POST /api/v1/profile/services
func (h *PilotHandler) CreateServicePackage(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.CreateServicePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}

	profile, err := h.profiles.GetByUserID(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	pkg := &models.ServicePackage{
		PilotProfileID: profile.ID,
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		DurationHours:  req.DurationHours,
	}

	if err := h.profiles.CreateServicePackage(pkg); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pkg)
}

// CreateAvailability adds an availability slot to the caller's profile
// POST /api/v1/profile/availability
func (h *PilotHandler) CreateAvailability(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, apperrors.InvalidInput("%s", err.Error()))
		return
	}

	profile, err := h.profiles.GetByUserID(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	slot := &models.AvailabilitySlot{
		PilotProfileID: profile.ID,
		Date:           date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		IsAvailable:    true,
	}

	if err := h.profiles.CreateAvailability(slot); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// DeleteAvailability removes one of the caller's availability slots
// DELETE /api/v1/availability/:id
func (h *PilotHandler) DeleteAvailability(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	profile, err := h.profiles.GetByUserID(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.profiles.DeleteAvailability(c.Param("id"), profile.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Availability slot deleted"})
}
