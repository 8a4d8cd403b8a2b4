package chat

import (
	"strings"
	"time"
)

// Message is an immutable log entry in a conversation. ID and CreatedAt are
// assigned server-side right before persistence so ordering never depends on
// producer clocks; ClientID is the caller-supplied idempotency token.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Text           string
	ClientID       *string
	CreatedAt      time.Time
	DeliveredAt    *time.Time
	SeenAt         *time.Time
}

// NewMessage validates and shapes a message for the conversation between
// senderID and recipientID. The returned message has no ID or CreatedAt yet.
func NewMessage(senderID, recipientID, text string, clientID *string) (*Message, error) {
	if senderID == "" || recipientID == "" {
		return nil, ErrMissingMember
	}
	if senderID == recipientID {
		return nil, ErrSameMember
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	if clientID != nil {
		k := strings.TrimSpace(*clientID)
		if k == "" {
			clientID = nil
		} else {
			clientID = &k
		}
	}

	return &Message{
		ConversationID: ConversationID(senderID, recipientID),
		SenderID:       senderID,
		Text:           trimmed,
		ClientID:       clientID,
	}, nil
}
