package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/dronebook/marketplace-backend/internal/middleware"
	"github.com/dronebook/marketplace-backend/internal/services"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the caller's most recent notifications together with
// their unread count
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	limit := cast.ToInt(c.Query("limit"))
	notifications, err := h.notifications.ListForUser(userCtx.UserID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	unread, err := h.notifications.UnreadCount(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkRead marks one notification as read
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	if err := h.notifications.MarkRead(c.Param("id"), userCtx.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead marks all of the caller's notifications as read
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	updated, err := h.notifications.MarkAllRead(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": updated})
}

// UnreadCount returns the caller's unread notification count
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	count, err := h.notifications.UnreadCount(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}
