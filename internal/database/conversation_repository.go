package database

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

// ConversationRepository handles database operations for conversations
type ConversationRepository struct {
	db *sqlx.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetByID retrieves a conversation by id
func (r *ConversationRepository) GetByID(conversationID string) (*models.Conversation, error) {
	conversation := &models.Conversation{}
	err := r.db.Get(conversation, `
		SELECT id, client_id, pilot_profile_id, created_at, last_message_at
		FROM conversations
		WHERE id = $1
	`, conversationID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("conversation not found")
		}
		return nil, apperrors.Storage("failed to fetch conversation", err)
	}

	return conversation, nil
}

// GetByParticipants retrieves the conversation for a (client, pilot)
// pair. Returns (nil, nil) when none exists.
func (r *ConversationRepository) GetByParticipants(clientID, pilotProfileID string) (*models.Conversation, error) {
	conversation := &models.Conversation{}
	err := r.db.Get(conversation, `
		SELECT id, client_id, pilot_profile_id, created_at, last_message_at
		FROM conversations
		WHERE client_id = $1 AND pilot_profile_id = $2
	`, clientID, pilotProfileID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Storage("failed to fetch conversation", err)
	}

	return conversation, nil
}

// Create inserts a conversation for a (client, pilot) pair. When two
// requests race, the unique constraint rejects the loser and the
// existing row is returned instead.
func (r *ConversationRepository) Create(clientID, pilotProfileID string) (*models.Conversation, error) {
	conversation := &models.Conversation{
		ID:             uuid.New().String(),
		ClientID:       clientID,
		PilotProfileID: pilotProfileID,
	}

	err := r.db.QueryRow(`
		INSERT INTO conversations (id, client_id, pilot_profile_id)
		VALUES ($1, $2, $3)
		RETURNING created_at, last_message_at
	`, conversation.ID, clientID, pilotProfileID).Scan(&conversation.CreatedAt, &conversation.LastMessageAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return r.GetByParticipants(clientID, pilotProfileID)
		}
		return nil, apperrors.Storage("failed to create conversation", err)
	}

	return conversation, nil
}

const conversationSummaryColumns = `
	c.id, c.client_id, c.pilot_profile_id, c.created_at, c.last_message_at,
	u.username AS client_username,
	p.name AS pilot_name,
	(SELECT m.content FROM messages m
	 WHERE m.conversation_id = c.id
	 ORDER BY m.created_at DESC LIMIT 1) AS last_message
`

const conversationSummaryJoins = `
	FROM conversations c
	JOIN users u ON u.id = c.client_id
	JOIN pilot_profiles p ON p.id = c.pilot_profile_id
`

// ListByClient retrieves conversation summaries for a client user,
// newest activity first
func (r *ConversationRepository) ListByClient(clientID string) ([]models.ConversationSummary, error) {
	summaries := []models.ConversationSummary{}
	err := r.db.Select(&summaries, `
		SELECT `+conversationSummaryColumns+`,
			(SELECT COUNT(*) FROM messages m
			 WHERE m.conversation_id = c.id
			   AND m.sender_type = 'pilot'
			   AND m.is_read = FALSE) AS unread_count
		`+conversationSummaryJoins+`
		WHERE c.client_id = $1
		ORDER BY c.last_message_at DESC
	`, clientID)

	if err != nil {
		return nil, apperrors.Storage("failed to list conversations", err)
	}

	return summaries, nil
}

// ListByPilotProfile retrieves conversation summaries for a pilot
// profile, newest activity first
func (r *ConversationRepository) ListByPilotProfile(pilotProfileID string) ([]models.ConversationSummary, error) {
	summaries := []models.ConversationSummary{}
	err := r.db.Select(&summaries, `
		SELECT `+conversationSummaryColumns+`,
			(SELECT COUNT(*) FROM messages m
			 WHERE m.conversation_id = c.id
			   AND m.sender_type = 'client'
			   AND m.is_read = FALSE) AS unread_count
		`+conversationSummaryJoins+`
		WHERE c.pilot_profile_id = $1
		ORDER BY c.last_message_at DESC
	`, pilotProfileID)

	if err != nil {
		return nil, apperrors.Storage("failed to list conversations", err)
	}

	return summaries, nil
}
