package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dronebook/marketplace-backend/internal/apperrors"
	"github.com/dronebook/marketplace-backend/internal/middleware"
	"github.com/dronebook/marketplace-backend/internal/models"
	"github.com/dronebook/marketplace-backend/internal/services"
)

// ChatHandler handles conversation and message HTTP requests
type ChatHandler struct {
	conversations *services.ConversationService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(conversations *services.ConversationService) *ChatHandler {
	return &ChatHandler{conversations: conversations}
}

// Start returns the conversation with a pilot, creating it on first
// contact
// POST /api/v1/conversations
func (h *ChatHandler) Start(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}

	conversation, err := h.conversations.GetOrCreate(userCtx.UserID, req.PilotProfileID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversation)
}

// List returns the caller's conversation summaries
// GET /api/v1/conversations
func (h *ChatHandler) List(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	summaries, err := h.conversations.ListConversations(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// ListMessages returns a conversation's messages and marks the
// counterparty's messages read
// GET /api/v1/conversations/:id/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	messages, err := h.conversations.ListMessages(userCtx.UserID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage appends a message to a conversation
// POST /api/v1/conversations/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: %v", err))
		return
	}

	message, err := h.conversations.Send(userCtx.UserID, c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// UnreadCount returns the caller's total unread message count
// GET /api/v1/chat/unread-count
func (h *ChatHandler) UnreadCount(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	count, err := h.conversations.UnreadCount(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}
