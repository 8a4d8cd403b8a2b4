package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/domain"
	repository "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/port"
)

func msg(id, text string, at time.Time, clientID *string) chat.Message {
	return chat.Message{
		ID:             id,
		ConversationID: "a_b",
		SenderID:       "a",
		Text:           text,
		ClientID:       clientID,
		CreatedAt:      at,
	}
}

var members = []string{"a", "b"}

func TestRecordMessageDuplicateClientID(t *testing.T) {
	repo := NewMemChatRepository()
	ctx := context.Background()
	now := time.Now().UTC()
	cid := "c1"

	require.NoError(t, repo.RecordMessageAndBumpUnread(ctx, members, msg("m1", "hi", now, &cid), "b"))
	err := repo.RecordMessageAndBumpUnread(ctx, members, msg("m2", "hi again", now, &cid), "b")
	assert.ErrorIs(t, err, repository.ErrDuplicateClientID)

	found, err := repo.FindMessageByClientID(ctx, "a_b", cid)
	require.NoError(t, err)
	assert.Equal(t, "m1", found.ID)

	_, err = repo.FindMessageByClientID(ctx, "a_b", "unknown")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpsertOnJoinLeavesStateAlone(t *testing.T) {
	repo := NewMemChatRepository()
	ctx := context.Background()

	require.NoError(t, repo.UpsertConversationOnJoin(ctx, "a_b", members))
	require.NoError(t, repo.RecordMessageAndBumpUnread(ctx, members, msg("m1", "hi", time.Now().UTC(), nil), "b"))

	// re-joining must not reset counters or the last message snapshot
	require.NoError(t, repo.UpsertConversationOnJoin(ctx, "a_b", members))

	convs, err := repo.ListConversationsForMember(ctx, "b")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 1, convs[0].Unread["b"])
	require.NotNil(t, convs[0].LastMessage)
}

func TestQueryMessagesBeforeOrderAndTiebreak(t *testing.T) {
	repo := NewMemChatRepository()
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Millisecond)

	// same createdAt, ids break the tie
	require.NoError(t, repo.RecordMessageAndBumpUnread(ctx, members, msg("id1", "first", at, nil), "b"))
	require.NoError(t, repo.RecordMessageAndBumpUnread(ctx, members, msg("id2", "second", at, nil), "b"))
	require.NoError(t, repo.RecordMessageAndBumpUnread(ctx, members, msg("id3", "third", at.Add(time.Second), nil), "b"))

	msgs, err := repo.QueryMessagesBefore(ctx, "a_b", nil, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"id3", "id2", "id1"}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})

	// composite boundary excludes the cursor message itself
	msgs, err = repo.QueryMessagesBefore(ctx, "a_b", &chat.Cursor{At: at, ID: "id2"}, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "id1", msgs[0].ID)

	// timestamp-only boundary is strict
	msgs, err = repo.QueryMessagesBefore(ctx, "a_b", &chat.Cursor{At: at}, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMarkConversationRead(t *testing.T) {
	repo := NewMemChatRepository()
	ctx := context.Background()

	require.NoError(t, repo.RecordMessageAndBumpUnread(ctx, members, msg("m1", "hi", time.Now().UTC(), nil), "b"))
	at := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.MarkConversationRead(ctx, "a_b", "b", at))

	convs, err := repo.ListConversationsForMember(ctx, "b")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 0, convs[0].Unread["b"])
	assert.Equal(t, at, convs[0].LastReadAt["b"])

	// unknown conversation: silent no-op
	assert.NoError(t, repo.MarkConversationRead(ctx, "x_y", "x", at))
}
