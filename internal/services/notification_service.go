package services

import (
	"github.com/sirupsen/logrus"

	"github.com/dronebook/marketplace-backend/internal/models"
)

// DefaultNotificationLimit caps how many notifications a single list
// request returns
const DefaultNotificationLimit = 50

// NotificationService manages in-app notifications
type NotificationService struct {
	store  NotificationStore
	logger *logrus.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(store NotificationStore, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		logger: logger,
	}
}

// Notify records an in-app notification. Failures are logged and
// swallowed so a broken notification never fails the operation that
// triggered it.
func (s *NotificationService) Notify(userID string, notificationType models.NotificationType, title, message string, link, relatedID *string) {
	notification := &models.Notification{
		UserID:    userID,
		Type:      notificationType,
		Title:     title,
		Message:   message,
		Link:      link,
		RelatedID: relatedID,
	}

	if err := s.store.Insert(notification); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"type":    notificationType,
			"title":   title,
		}).Error("Failed to create notification")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"notification_id": notification.ID,
		"user_id":         userID,
		"type":            notificationType,
	}).Debug("Notification created")
}

// ListForUser returns the user's most recent notifications
func (s *NotificationService) ListForUser(userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > DefaultNotificationLimit {
		limit = DefaultNotificationLimit
	}
	return s.store.ListByUser(userID, limit)
}

// MarkRead marks a single notification as read for its owner
func (s *NotificationService) MarkRead(notificationID, userID string) error {
	return s.store.MarkRead(notificationID, userID)
}

// MarkAllRead marks all of the user's notifications as read and
// returns how many changed
func (s *NotificationService) MarkAllRead(userID string) (int64, error) {
	return s.store.MarkAllRead(userID)
}

// UnreadCount returns the user's unread notification count
func (s *NotificationService) UnreadCount(userID string) (int64, error) {
	return s.store.UnreadCount(userID)
}
