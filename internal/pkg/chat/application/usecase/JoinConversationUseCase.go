package usecase

import (
	"context"
	"fmt"

	chat "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/domain"
	repository "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/port"
)

// JoinConversationInput identifies the two parties of the thread to open.
type JoinConversationInput struct {
	UID      string
	OtherUID string
}

// JoinConversationUseCase resolves the canonical conversation id for the pair
// and lazily creates the row (without touching counters) so that joining an
// empty thread and receiving into it are the same storage shape.
type JoinConversationUseCase struct {
	Repo repository.ChatRepository
}

func NewJoinConversationUseCase(repo repository.ChatRepository) *JoinConversationUseCase {
	return &JoinConversationUseCase{Repo: repo}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) (string, error) {
	if in.UID == "" || in.OtherUID == "" {
		return "", fmt.Errorf("%w: both uids are required", ErrValidation)
	}
	if in.UID == in.OtherUID {
		return "", fmt.Errorf("%w: cannot open a conversation with yourself", ErrValidation)
	}

	id := chat.ConversationID(in.UID, in.OtherUID)
	if err := uc.Repo.UpsertConversationOnJoin(ctx, id, chat.Members(in.UID, in.OtherUID)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return id, nil
}
