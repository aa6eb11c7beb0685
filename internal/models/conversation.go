package models

import "time"

// SenderType tags which party of a conversation authored a message
type SenderType string

const (
	SenderTypeClient SenderType = "client"
	SenderTypePilot  SenderType = "pilot"
)

// Conversation is the unique message thread between one client and one
// pilot profile. Uniqueness of the (client, pilot) pair is enforced by a
// database constraint.
type Conversation struct {
	ID             string    `json:"id" db:"id"`
	ClientID       string    `json:"client_id" db:"client_id"`
	PilotProfileID string    `json:"pilot_profile_id" db:"pilot_profile_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	LastMessageAt  time.Time `json:"last_message_at" db:"last_message_at"`
}

// ConversationSummary is a conversation enriched for list views, ordered
// by last_message_at descending.
type ConversationSummary struct {
	Conversation
	ClientUsername string  `json:"client_username" db:"client_username"`
	PilotName      string  `json:"pilot_name" db:"pilot_name"`
	LastMessage    *string `json:"last_message,omitempty" db:"last_message"`
	UnreadCount    int     `json:"unread_count" db:"unread_count"`
}

// Message belongs to exactly one conversation. Immutable once created
// except for the is_read flag.
type Message struct {
	ID             string     `json:"id" db:"id"`
	ConversationID string     `json:"conversation_id" db:"conversation_id"`
	SenderID       string     `json:"sender_id" db:"sender_id"`
	SenderType     SenderType `json:"sender_type" db:"sender_type"`
	Content        string     `json:"content" db:"content"`
	IsRead         bool       `json:"is_read" db:"is_read"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// StartConversationRequest represents the request to open (or fetch) the
// thread with a pilot
type StartConversationRequest struct {
	PilotProfileID string `json:"pilot_profile_id" binding:"required"`
}

// SendMessageRequest represents the request to send a message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// MessagePreview truncates content for a notification, appending an
// ellipsis only when something was cut.
func MessagePreview(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
