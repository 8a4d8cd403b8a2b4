package repository

import (
	"context"
	"errors"
	"time"

	chat "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/domain"
)

// Typed storage errors. Adapters must map their backend's failures onto these
// so the application layer can branch without knowing the store.
var (
	// ErrDuplicateClientID signals that a message with the same
	// (conversationID, clientID) pair already exists. The ingestion pipeline
	// recovers by re-fetching the winner; it is never user-visible.
	ErrDuplicateClientID = errors.New("chat repository: duplicate client id")

	// ErrNotFound signals a missing row on point lookups.
	ErrNotFound = errors.New("chat repository: not found")
)

// ChatRepository defines the persistence operations the chat core requires.
// Every mutating operation must be atomic at the storage layer: the design
// avoids in-process locking by expressing each write as one atomic
// read-modify-write against a single conversation or message row.
type ChatRepository interface {
	// UpsertConversationOnJoin creates the conversation row if absent with
	// both members' unread counters at zero. Idempotent; an existing row's
	// unread/lastMessage state is left untouched.
	UpsertConversationOnJoin(ctx context.Context, id string, members []string) error

	// RecordMessageAndBumpUnread atomically inserts the message, sets the
	// conversation's lastMessage/lastMessageAt, and increments the
	// recipient's unread by one, creating the conversation row if absent.
	// Returns ErrDuplicateClientID when the message's clientID collides with
	// an already stored message in the same conversation.
	RecordMessageAndBumpUnread(ctx context.Context, members []string, m chat.Message, recipientID string) error

	// FindMessageByClientID looks up the message stored for the idempotency
	// token. Returns ErrNotFound when no such message exists.
	FindMessageByClientID(ctx context.Context, conversationID, clientID string) (*chat.Message, error)

	// QueryMessagesBefore returns up to limit messages older than the cursor
	// (the newest when before is nil), ordered by createdAt descending with
	// the message id as tiebreak.
	QueryMessagesBefore(ctx context.Context, conversationID string, before *chat.Cursor, limit int) ([]chat.Message, error)

	// MarkConversationRead atomically sets lastReadAt[readerID] = at and
	// resets unread[readerID] to zero. A missing conversation is a no-op.
	MarkConversationRead(ctx context.Context, conversationID, readerID string, at time.Time) error

	// ListConversationsForMember returns the member's conversations ordered
	// by lastMessageAt descending.
	ListConversationsForMember(ctx context.Context, memberID string) ([]chat.Conversation, error)
}
