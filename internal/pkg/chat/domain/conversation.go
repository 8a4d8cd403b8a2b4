package chat

import (
	"errors"
	"time"
)

// idSeparator joins the two member ids into the conversation id. Member ids
// must not contain it; the identity layer upstream guarantees the charset.
const idSeparator = "_"

// Domain-level errors for chat behaviors
var (
	ErrMissingMember = errors.New("chat: both member ids are required")
	ErrSameMember    = errors.New("chat: a conversation needs two distinct members")
	ErrEmptyMessage  = errors.New("chat: message text is empty")
)

// ConversationID derives the canonical id for the thread between a and b.
// It is commutative: ConversationID(a, b) == ConversationID(b, a).
func ConversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + idSeparator + b
}

// Members returns the pair sorted into canonical (stored) order.
func Members(a, b string) []string {
	if a > b {
		a, b = b, a
	}
	return []string{a, b}
}

// LastMessage is a denormalized snapshot of the newest message in a
// conversation, kept on the conversation row so listings need no join.
type LastMessage struct {
	Text     string `json:"text"`
	SenderID string `json:"senderId"`
}

// Conversation is a two-party thread. Unread and LastReadAt are keyed by
// member id; both members are always present in Unread once the row exists.
type Conversation struct {
	ID            string
	Members       []string
	LastMessage   *LastMessage
	LastMessageAt *time.Time
	Unread        map[string]int
	LastReadAt    map[string]time.Time
	CreatedAt     time.Time
}

// HasMember tells whether uid belongs to this conversation.
func (c *Conversation) HasMember(uid string) bool {
	for _, m := range c.Members {
		if m == uid {
			return true
		}
	}
	return false
}

// OtherMember returns the member that is not uid, or "" when uid is not a
// member.
func (c *Conversation) OtherMember(uid string) string {
	if !c.HasMember(uid) {
		return ""
	}
	for _, m := range c.Members {
		if m != uid {
			return m
		}
	}
	return ""
}
