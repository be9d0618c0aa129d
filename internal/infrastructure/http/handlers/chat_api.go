package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mealsmith/api/internal/infrastructure/http/middleware"
	"github.com/mealsmith/api/internal/ports/inbound"
	apperrors "github.com/mealsmith/api/pkg/errors"
)

// ChatAPIHandlers handles assistant chat requests
type ChatAPIHandlers struct {
	chatService inbound.ChatService
	logger      *zap.Logger
}

// NewChatAPIHandlers creates a new chat API handlers instance
func NewChatAPIHandlers(chatService inbound.ChatService, logger *zap.Logger) *ChatAPIHandlers {
	return &ChatAPIHandlers{
		chatService: chatService,
		logger:      logger,
	}
}

// SendMessageRequest represents a chat message request
type SendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessage handles POST /api/v1/chat/message
func (h *ChatAPIHandlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(r)
	if !ok {
		writeErrorJSON(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, r, apperrors.NewBadRequestError("Invalid JSON payload"))
		return
	}

	result, err := h.chatService.SendMessage(r.Context(), userID, req.Message)
	if err != nil {
		h.logger.Warn("chat request failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    result,
	})
}

// historyItem is the wire shape of one conversation turn
type historyItem struct {
	ID          uuid.UUID `json:"id"`
	UserMessage string    `json:"user_message"`
	AIReply     string    `json:"ai_reply"`
	CreatedAt   string    `json:"created_at"`
}

// History handles GET /api/v1/chat/history
func (h *ChatAPIHandlers) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(r)
	if !ok {
		writeErrorJSON(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeErrorJSON(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	messages, err := h.chatService.History(r.Context(), userID, limit)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	items := make([]historyItem, 0, len(messages))
	for _, msg := range messages {
		items = append(items, historyItem{
			ID:          msg.ID,
			UserMessage: msg.UserMessage,
			AIReply:     msg.AIReply,
			CreatedAt:   msg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"messages": items,
			"total":    len(items),
		},
	})
}

func authenticatedUserID(r *http.Request) (uuid.UUID, bool) {
	raw, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}
