package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/mealsmith/api/internal/domain/cooking"
	"github.com/mealsmith/api/internal/ports/outbound"
	apperrors "github.com/mealsmith/api/pkg/errors"
)

// defaultHistoryLimit matches the history endpoint's default page size
const defaultHistoryLimit = 20

// Recorder persists conversation turns and serves history
type Recorder struct {
	messages outbound.MessageRepository
}

// NewRecorder creates a conversation recorder
func NewRecorder(messages outbound.MessageRepository) *Recorder {
	return &Recorder{messages: messages}
}

// Record appends exactly one turn for the run and returns the created record.
// A persistence failure here fails the whole run; no partial turn exists.
func (r *Recorder) Record(ctx context.Context, userID uuid.UUID, userMessage, aiReply string) (*cooking.Message, error) {
	msg := cooking.NewMessage(userID, userMessage, aiReply)
	if err := r.messages.Append(ctx, msg); err != nil {
		return nil, apperrors.Wrap(err, "failed to record conversation turn")
	}
	return msg, nil
}

// History returns the user's last N turns. Storage keeps them newest first;
// the result is reversed so callers read the conversation oldest first.
func (r *Recorder) History(ctx context.Context, userID uuid.UUID, limit int) ([]*cooking.Message, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	messages, err := r.messages.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load conversation history")
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
