package database

import (
	"github.com/google/uuid"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert stores a notification
func (r *NotificationRepository) Insert(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}

	err := r.db.QueryRow(`
		INSERT INTO notifications (id, user_id, notification_type, title, message, link, related_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, notification.ID, notification.UserID, notification.Type, notification.Title,
		notification.Message, notification.Link, notification.RelatedID).Scan(&notification.CreatedAt)

	if err != nil {
		return apperrors.Storage("failed to insert notification", err)
	}

	return nil
}

// ListByUser retrieves a user's notifications, newest first
func (r *NotificationRepository) ListByUser(userID string, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.Select(&notifications, `
		SELECT id, user_id, notification_type, title, message, link, related_id, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)

	if err != nil {
		return nil, apperrors.Storage("failed to list notifications", err)
	}

	return notifications, nil
}

// MarkRead marks a single notification as read, scoped to its owner
func (r *NotificationRepository) MarkRead(notificationID, userID string) error {
	result, err := r.db.Exec(`
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return apperrors.Storage("failed to mark notification read", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to read update result", err)
	}
	if rows == 0 {
		return apperrors.NotFound("notification not found")
	}

	return nil
}

// MarkAllRead marks all of a user's notifications as read
func (r *NotificationRepository) MarkAllRead(userID string) (int64, error) {
	result, err := r.db.Exec(`
		UPDATE notifications SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return 0, apperrors.Storage("failed to mark notifications read", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Storage("failed to read update result", err)
	}

	return rows, nil
}

// UnreadCount counts a user's unread notifications
func (r *NotificationRepository) UnreadCount(userID string) (int64, error) {
	var count int64
	err := r.db.Get(&count, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return 0, apperrors.Storage("failed to count unread notifications", err)
	}

	return count, nil
}
