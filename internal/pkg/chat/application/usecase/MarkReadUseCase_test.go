package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/domain"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/adapter"
)

func TestMarkReadResetsUnread(t *testing.T) {
	repo := adapter.NewMemChatRepository()
	chatID := seedConversation(t, repo, 4)
	uc := NewMarkReadUseCase(repo, nil)
	ctx := context.Background()

	at, err := uc.Execute(ctx, MarkReadInput{ConversationID: chatID, ReaderID: "u2"})
	require.NoError(t, err)

	convs, err := repo.ListConversationsForMember(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 0, convs[0].Unread["u2"])
	assert.Equal(t, at, convs[0].LastReadAt["u2"])
	require.NotNil(t, convs[0].LastMessageAt)
	assert.False(t, at.Before(*convs[0].LastMessageAt))

	// idempotent beyond timestamp refresh
	again, err := uc.Execute(ctx, MarkReadInput{ConversationID: chatID, ReaderID: "u2"})
	require.NoError(t, err)
	assert.False(t, again.Before(at))
	convs, err = repo.ListConversationsForMember(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 0, convs[0].Unread["u2"])
}

func TestMarkReadMissingConversationIsNoop(t *testing.T) {
	uc := NewMarkReadUseCase(adapter.NewMemChatRepository(), nil)
	_, err := uc.Execute(context.Background(), MarkReadInput{ConversationID: "a_b", ReaderID: "a"})
	assert.NoError(t, err)
}

func TestMarkReadValidation(t *testing.T) {
	uc := NewMarkReadUseCase(adapter.NewMemChatRepository(), nil)
	_, err := uc.Execute(context.Background(), MarkReadInput{ConversationID: "", ReaderID: "a"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListConversationsResolvesPerMemberState(t *testing.T) {
	repo := adapter.NewMemChatRepository()
	sendUC := NewSendMessageUseCase(repo, nil)
	listUC := NewListConversationsUseCase(repo, nil)
	ctx := context.Background()

	_, err := sendUC.Execute(ctx, SendMessageInput{SenderID: "alice", RecipientID: "bob", Text: "hey bob"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond) // distinct lastMessageAt for a stable list order
	_, err = sendUC.Execute(ctx, SendMessageInput{SenderID: "carol", RecipientID: "bob", Text: "hey from carol"})
	require.NoError(t, err)

	chats, err := listUC.Execute(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, chats, 2)

	// newest conversation first
	assert.Equal(t, "carol", chats[0].OtherUID)
	assert.Equal(t, "alice", chats[1].OtherUID)
	for _, s := range chats {
		assert.Equal(t, 1, s.Unread)
		assert.Nil(t, s.LastReadAt)
		require.NotNil(t, s.LastMessage)
	}
	assert.Equal(t, "hey from carol", chats[0].LastMessage.Text)
	assert.Equal(t, chat.ConversationID("bob", "carol"), chats[0].ChatID)

	_, err = listUC.Execute(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
}
