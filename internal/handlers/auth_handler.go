package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mssola/user_agent"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/database"
	"github.com/dronebook/marketplace-backend/internal/models"
	"github.com/dronebook/marketplace-backend/pkg/jwt"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	users      *database.UserRepository
	profiles   *database.PilotProfileRepository
	jwtService *jwt.Service
	logger     *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	users *database.UserRepository,
	profiles *database.PilotProfileRepository,
	jwtService *jwt.Service,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:      users,
		profiles:   profiles,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a new account. A Pilot registration also creates an
// empty pilot profile so the user can be booked once they fill it in.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, apperrors.InvalidInput("%s", err.Error()))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, apperrors.Storage("failed to hash password", err))
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}

	if err := h.users.Create(user); err != nil {
		respondError(c, err)
		return
	}

	if user.Role == models.RolePilot {
		profile := &models.PilotProfile{
			UserID: user.ID,
			Name:   user.Username,
		}
		if err := h.profiles.Create(profile); err != nil {
			h.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to create pilot profile")
			respondError(c, err)
			return
		}
	}

	token, err := h.jwtService.Generate(user.ID, user.Username, user.Email, string(user.Role))
	if err != nil {
		respondError(c, apperrors.Storage("failed to issue token", err))
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")

	c.JSON(http.StatusCreated, models.AuthResponse{Token: token, User: user})
}

// Login verifies credentials and issues an access token
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		// Do not reveal whether the account exists
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid email or password",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid email or password",
		})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "account_inactive",
			"message": "Account has been deactivated",
		})
		return
	}

	token, err := h.jwtService.Generate(user.ID, user.Username, user.Email, string(user.Role))
	if err != nil {
		respondError(c, apperrors.Storage("failed to issue token", err))
		return
	}

	ua := user_agent.New(c.Request.UserAgent())
	browser, _ := ua.Browser()
	h.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"ip":      c.ClientIP(),
		"os":      ua.OS(),
		"browser": browser,
		"mobile":  ua.Mobile(),
	}).Info("User logged in")

	c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: user})
}
