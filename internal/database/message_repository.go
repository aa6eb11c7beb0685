package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

// MessageRepository handles database operations for chat messages
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Insert stores a message and bumps the conversation's last_message_at
// to the message timestamp in the same transaction
func (r *MessageRepository) Insert(conversationID, senderID string, senderType models.SenderType, content string) (*models.Message, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, apperrors.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback()

	message := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     senderType,
		Content:        content,
	}

	err = tx.QueryRow(`
		INSERT INTO messages (id, conversation_id, sender_id, sender_type, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, message.ID, conversationID, senderID, senderType, content).Scan(&message.CreatedAt)
	if err != nil {
		return nil, apperrors.Storage("failed to insert message", err)
	}

	_, err = tx.Exec(`
		UPDATE conversations SET last_message_at = $2 WHERE id = $1
	`, conversationID, message.CreatedAt)
	if err != nil {
		return nil, apperrors.Storage("failed to update conversation activity", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Storage("failed to commit message", err)
	}

	return message, nil
}

// ListByConversation retrieves all messages of a conversation in
// chronological order
func (r *MessageRepository) ListByConversation(conversationID string) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.db.Select(&messages, `
		SELECT id, conversation_id, sender_id, sender_type, content, is_read, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`, conversationID)

	if err != nil {
		return nil, apperrors.Storage("failed to list messages", err)
	}

	return messages, nil
}

// MarkConversationRead marks every unread message not sent by the
// reader as read. The count runs first so a conversation with nothing
// unread issues no write at all. Returns the number of messages marked.
func (r *MessageRepository) MarkConversationRead(conversationID, readerID string) (int64, error) {
	var unread int64
	err := r.db.Get(&unread, `
		SELECT COUNT(*) FROM messages
		WHERE conversation_id = $1 AND sender_id <> $2 AND is_read = FALSE
	`, conversationID, readerID)
	if err != nil {
		return 0, apperrors.Storage("failed to count unread messages", err)
	}

	if unread == 0 {
		return 0, nil
	}

	result, err := r.db.Exec(`
		UPDATE messages SET is_read = TRUE
		WHERE conversation_id = $1 AND sender_id <> $2 AND is_read = FALSE
	`, conversationID, readerID)
	if err != nil {
		return 0, apperrors.Storage("failed to mark messages read", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Storage("failed to read update result", err)
	}

	return rows, nil
}

// UnreadCountForClient counts unread pilot messages across all of a
// client's conversations
func (r *MessageRepository) UnreadCountForClient(clientID string) (int64, error) {
	return r.unreadCount(`
		SELECT COUNT(*) FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.client_id = $1 AND m.sender_type = 'pilot' AND m.is_read = FALSE
	`, clientID)
}

// UnreadCountForPilotProfile counts unread client messages across all
// of a pilot profile's conversations
func (r *MessageRepository) UnreadCountForPilotProfile(pilotProfileID string) (int64, error) {
	return r.unreadCount(`
		SELECT COUNT(*) FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.pilot_profile_id = $1 AND m.sender_type = 'client' AND m.is_read = FALSE
	`, pilotProfileID)
}

func (r *MessageRepository) unreadCount(query, id string) (int64, error) {
	var count int64
	if err := r.db.Get(&count, query, id); err != nil {
		return 0, apperrors.Storage(fmt.Sprintf("failed to count unread messages for %s", id), err)
	}
	return count, nil
}
