package services

import (
	"github.com/dronebook/marketplace-backend/internal/models"
)

// UserStore is the subset of user persistence the services need
type UserStore interface {
	GetByID(userID string) (*models.User, error)
}

// PilotProfileStore is the subset of pilot profile persistence the
// services need
type PilotProfileStore interface {
	GetByID(profileID string) (*models.PilotProfile, error)
	GetByUserID(userID string) (*models.PilotProfile, error)
	GetServicePackage(packageID string) (*models.ServicePackage, error)
}

// BookingStore is the subset of booking persistence the services need
type BookingStore interface {
	Create(booking *models.Booking) error
	GetByID(bookingID string) (*models.Booking, error)
	UpdateStatus(bookingID string, from, to models.BookingStatus) (models.BookingStatus, error)
	ListDetailsByClient(clientID string) ([]models.BookingDetail, error)
	ListDetailsByPilotProfile(pilotProfileID string) ([]models.BookingDetail, error)
}

// PaymentStore is the subset of payment persistence the services need
type PaymentStore interface {
	Create(payment *models.Payment) error
	GetByBookingID(bookingID string) (*models.Payment, error)
	GetByIntentID(intentID string) (*models.Payment, error)
	ReplaceIntent(paymentID, intentID string, amount int64) error
	UpdateStatus(paymentID string, status models.PaymentStatus) error
	MarkSucceeded(paymentID, bookingID string) (bool, error)
}

// ConversationStore is the subset of conversation persistence the
// services need
type ConversationStore interface {
	GetByID(conversationID string) (*models.Conversation, error)
	GetByParticipants(clientID, pilotProfileID string) (*models.Conversation, error)
	Create(clientID, pilotProfileID string) (*models.Conversation, error)
	ListByClient(clientID string) ([]models.ConversationSummary, error)
	ListByPilotProfile(pilotProfileID string) ([]models.ConversationSummary, error)
}

// MessageStore is the subset of message persistence the services need
type MessageStore interface {
	Insert(conversationID, senderID string, senderType models.SenderType, content string) (*models.Message, error)
	ListByConversation(conversationID string) ([]models.Message, error)
	MarkConversationRead(conversationID, readerID string) (int64, error)
	UnreadCountForClient(clientID string) (int64, error)
	UnreadCountForPilotProfile(pilotProfileID string) (int64, error)
}

// ReviewStore is the subset of review persistence the services need
type ReviewStore interface {
	Create(review *models.Review) error
	ListByPilotProfile(profileID string) ([]models.ReviewDetail, error)
}

// NotificationStore is the subset of notification persistence the
// services need
type NotificationStore interface {
	Insert(notification *models.Notification) error
	ListByUser(userID string, limit int) ([]models.Notification, error)
	MarkRead(notificationID, userID string) error
	MarkAllRead(userID string) (int64, error)
	UnreadCount(userID string) (int64, error)
}

// Notifier dispatches in-app notifications. Implementations must never
// fail the calling operation; delivery is best-effort.
type Notifier interface {
	Notify(userID string, notificationType models.NotificationType, title, message string, link, relatedID *string)
}

// PaymentIntent is the provider-side handle for a payment attempt
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

// PaymentProvider talks to the external payment gateway. The local
// payment status always follows what RetrieveIntent reports, never a
// client-supplied status.
type PaymentProvider interface {
	CreatePaymentIntent(amount int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	RetrieveIntent(intentID string) (*PaymentIntent, error)
}
