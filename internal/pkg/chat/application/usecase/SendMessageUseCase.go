package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	cacheport "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/cache/port"
	chat "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/domain"
	repository "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/port"
)

// SendMessageInput carries the data needed to send a new message.
type SendMessageInput struct {
	SenderID    string
	RecipientID string
	Text        string
	ClientID    *string
}

// SendMessageOutput is the persisted message plus whether this call was
// resolved from a previously stored duplicate. On the duplicate path the
// caller must ack but not broadcast again; the original send already did.
type SendMessageOutput struct {
	Message   chat.Message
	Duplicate bool
}

// SendMessageUseCase is the message ingestion pipeline: validate, dedupe,
// persist atomically, and report back for ack/fan-out.
// Hexagonal: depends on repository port, returns domain entity.
type SendMessageUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache // optional; conversation-list cache to invalidate
}

func NewSendMessageUseCase(repo repository.ChatRepository, cache cacheport.Cache) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Cache: cache}
}

// Execute runs the pipeline. The clientID existence check is advisory only:
// the storage uniqueness constraint is the authority, and a racing duplicate
// insert is recovered by re-fetching the winner.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	msg, err := chat.NewMessage(in.SenderID, in.RecipientID, in.Text, in.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if msg.ClientID != nil {
		existing, err := uc.Repo.FindMessageByClientID(ctx, msg.ConversationID, *msg.ClientID)
		if err == nil {
			return &SendMessageOutput{Message: *existing, Duplicate: true}, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	// Server-assigned identity and timestamps; millisecond precision so the
	// wire cursor round-trips losslessly.
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	msg.ID = id.String()
	msg.CreatedAt = now
	msg.DeliveredAt = &now

	members := chat.Members(in.SenderID, in.RecipientID)
	err = uc.Repo.RecordMessageAndBumpUnread(ctx, members, *msg, in.RecipientID)
	if errors.Is(err, repository.ErrDuplicateClientID) {
		// Lost the race: ack the winner as if it were ours.
		existing, ferr := uc.Repo.FindMessageByClientID(ctx, msg.ConversationID, *msg.ClientID)
		if ferr != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, ferr)
		}
		return &SendMessageOutput{Message: *existing, Duplicate: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	invalidateChatLists(ctx, uc.Cache, members...)
	return &SendMessageOutput{Message: *msg, Duplicate: false}, nil
}
