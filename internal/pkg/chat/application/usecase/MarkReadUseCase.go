package usecase

import (
	"context"
	"fmt"
	"time"

	cacheport "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/cache/port"
	repository "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/port"
)

// MarkReadInput names the conversation and the member acknowledging it.
type MarkReadInput struct {
	ConversationID string
	ReaderID       string
}

// MarkReadUseCase acknowledges a conversation as read: lastReadAt[reader] is
// set and unread[reader] zeroed in one atomic storage write. Idempotent;
// repeating it only refreshes the timestamp.
type MarkReadUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache // optional
}

func NewMarkReadUseCase(repo repository.ChatRepository, cache cacheport.Cache) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo, Cache: cache}
}

// Execute returns the read timestamp to broadcast to the conversation room.
func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) (time.Time, error) {
	if in.ConversationID == "" || in.ReaderID == "" {
		return time.Time{}, fmt.Errorf("%w: conversation id and reader id are required", ErrValidation)
	}

	at := time.Now().UTC().Truncate(time.Millisecond)
	if err := uc.Repo.MarkConversationRead(ctx, in.ConversationID, in.ReaderID, at); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	invalidateChatLists(ctx, uc.Cache, in.ReaderID)
	return at, nil
}
