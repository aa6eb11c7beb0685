package models

import "time"

// NotificationType tags the event class a notification reports
type NotificationType string

const (
	NotificationTypeBooking NotificationType = "booking"
	NotificationTypePayment NotificationType = "payment"
	NotificationTypeMessage NotificationType = "message"
	NotificationTypeSystem  NotificationType = "system"
)

// Notification is an in-app record informing a user of an event relevant
// to their bookings, payments or messages. Terminal leaf record; only
// is_read is mutated after creation.
type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"notification_type" db:"notification_type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Link      *string          `json:"link,omitempty" db:"link"`
	RelatedID *string          `json:"related_id,omitempty" db:"related_id"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
