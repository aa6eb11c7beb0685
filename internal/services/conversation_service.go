package services

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/models"
)

// ConversationService manages the message threads between clients and
// pilot profiles
type ConversationService struct {
	conversations ConversationStore
	messages      MessageStore
	profiles      PilotProfileStore
	users         UserStore
	notifier      Notifier
	logger        *logrus.Logger
}

// NewConversationService creates a new ConversationService
func NewConversationService(
	conversations ConversationStore,
	messages MessageStore,
	profiles PilotProfileStore,
	users UserStore,
	notifier Notifier,
	logger *logrus.Logger,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		profiles:      profiles,
		users:         users,
		notifier:      notifier,
		logger:        logger,
	}
}

// GetOrCreate returns the unique conversation between the calling
// client and a pilot profile, creating it on first contact
func (s *ConversationService) GetOrCreate(userID, pilotProfileID string) (*models.Conversation, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if !user.IsClient() {
		return nil, apperrors.Forbidden("only clients can start conversations")
	}

	profile, err := s.profiles.GetByID(pilotProfileID)
	if err != nil {
		return nil, err
	}

	existing, err := s.conversations.GetByParticipants(userID, profile.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	conversation, err := s.conversations.Create(userID, profile.ID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"conversation_id": conversation.ID,
		"client_id":       userID,
		"pilot_id":        profile.ID,
	}).Info("Conversation created")

	return conversation, nil
}

// ListMessages returns a conversation's messages oldest first and marks
// the counterparty's unread messages as read
func (s *ConversationService) ListMessages(userID, conversationID string) ([]models.Message, error) {
	conversation, _, err := s.authorize(userID, conversationID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByConversation(conversation.ID)
	if err != nil {
		return nil, err
	}

	if _, err := s.messages.MarkConversationRead(conversation.ID, userID); err != nil {
		return nil, err
	}

	return messages, nil
}

// Send appends a message to a conversation and notifies the other
// participant with a short preview
func (s *ConversationService) Send(userID, conversationID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.InvalidInput("message content cannot be empty")
	}

	conversation, senderType, err := s.authorize(userID, conversationID)
	if err != nil {
		return nil, err
	}

	message, err := s.messages.Insert(conversation.ID, userID, senderType, content)
	if err != nil {
		return nil, err
	}

	s.notifyRecipient(conversation, senderType, userID, content)

	return message, nil
}

// ListConversations returns the caller's conversation summaries,
// newest activity first
func (s *ConversationService) ListConversations(userID string) ([]models.ConversationSummary, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if user.IsPilot() {
		profile, err := s.profiles.GetByUserID(userID)
		if err != nil {
			return nil, err
		}
		return s.conversations.ListByPilotProfile(profile.ID)
	}

	return s.conversations.ListByClient(userID)
}

// UnreadCount returns how many counterparty messages the caller has not
// read, across all their conversations
func (s *ConversationService) UnreadCount(userID string) (int64, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return 0, err
	}

	if user.IsPilot() {
		profile, err := s.profiles.GetByUserID(userID)
		if err != nil {
			return 0, err
		}
		return s.messages.UnreadCountForPilotProfile(profile.ID)
	}

	return s.messages.UnreadCountForClient(userID)
}

// authorize resolves the caller's side of a conversation. Clients must
// own the client seat, pilots the profile seat.
func (s *ConversationService) authorize(userID, conversationID string) (*models.Conversation, models.SenderType, error) {
	conversation, err := s.conversations.GetByID(conversationID)
	if err != nil {
		return nil, "", err
	}

	if conversation.ClientID == userID {
		return conversation, models.SenderTypeClient, nil
	}

	profile, err := s.profiles.GetByUserID(userID)
	if err == nil && profile.ID == conversation.PilotProfileID {
		return conversation, models.SenderTypePilot, nil
	}

	return nil, "", apperrors.Forbidden("conversation belongs to other participants")
}

func (s *ConversationService) notifyRecipient(conversation *models.Conversation, senderType models.SenderType, senderID, content string) {
	var recipientID, senderName string

	if senderType == models.SenderTypeClient {
		profile, err := s.profiles.GetByID(conversation.PilotProfileID)
		if err != nil {
			s.logger.WithError(err).WithField("conversation_id", conversation.ID).Warn("Failed to resolve message recipient")
			return
		}
		recipientID = profile.UserID
	} else {
		recipientID = conversation.ClientID
	}

	if sender, err := s.users.GetByID(senderID); err == nil {
		senderName = sender.Username
	}
	if senderType == models.SenderTypePilot {
		if profile, err := s.profiles.GetByUserID(senderID); err == nil {
			senderName = profile.Name
		}
	}
	if senderName == "" {
		senderName = "Someone"
	}

	link := fmt.Sprintf("/messages/%s", conversation.ID)
	s.notifier.Notify(recipientID, models.NotificationTypeMessage,
		fmt.Sprintf("New message from %s", senderName),
		models.MessagePreview(content, 50),
		&link, &conversation.ID)
}
