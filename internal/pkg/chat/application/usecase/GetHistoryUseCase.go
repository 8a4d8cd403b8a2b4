package usecase

import (
	"context"
	"fmt"

	chat "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/domain"
	repository "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/port"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// GetHistoryInput carries parameters to fetch one page of a conversation.
// Before is the raw wire cursor; empty means "newest page".
type GetHistoryInput struct {
	ConversationID string
	Limit          int
	Before         string
}

// GetHistoryOutput is one page in delivery order (ascending by createdAt).
// NextCursor is nil exactly when the page came back short, which proves no
// older messages remain.
type GetHistoryOutput struct {
	Items      []chat.Message
	NextCursor *chat.Cursor
}

// GetHistoryUseCase pages a conversation's message sequence. Storage returns
// newest-first so the boundary is the oldest of the newest limit; the page is
// reversed before delivery because clients render oldest-first.
type GetHistoryUseCase struct {
	Repo repository.ChatRepository
}

func NewGetHistoryUseCase(repo repository.ChatRepository) *GetHistoryUseCase {
	return &GetHistoryUseCase{Repo: repo}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) (*GetHistoryOutput, error) {
	if in.ConversationID == "" {
		return nil, fmt.Errorf("%w: conversation id is required", ErrValidation)
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	cursor, err := chat.ParseCursor(in.Before)
	if err != nil {
		return nil, err // chat.ErrInvalidCursor, surfaced as-is
	}

	msgs, err := uc.Repo.QueryMessagesBefore(ctx, in.ConversationID, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	out := &GetHistoryOutput{}
	if len(msgs) == limit {
		oldest := msgs[len(msgs)-1]
		out.NextCursor = &chat.Cursor{At: oldest.CreatedAt, ID: oldest.ID}
	}

	// reverse descending -> ascending
	out.Items = make([]chat.Message, len(msgs))
	for i, m := range msgs {
		out.Items[len(msgs)-1-i] = m
	}
	return out, nil
}
