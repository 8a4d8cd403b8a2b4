package controller

import (
	"time"

	chat "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/domain"
)

// Wire event names. These are the realtime protocol contract; the HTTP
// surface mirrors the same payload shapes.
const (
	evConnected  = "connected"
	evJoin       = "chat:join"
	evJoined     = "chat:joined"
	evLeave      = "chat:leave"
	evLeft       = "chat:left"
	evHistory    = "chat:history"
	evRead       = "chat:read"
	evSend       = "message:send"
	evAck        = "message:ack"
	evNewMessage = "message:new"
	evTyping     = "typing"
	evPresence   = "presence"
	evError      = "error"
)

// inboundFrame is the union of all client->server frames; Type selects which
// fields are meaningful.
type inboundFrame struct {
	Type     string  `json:"type"`
	OtherUID string  `json:"otherUid,omitempty"`
	ChatID   string  `json:"chatId,omitempty"`
	To       string  `json:"to,omitempty"`
	Text     string  `json:"text,omitempty"`
	ClientID *string `json:"clientId,omitempty"`
	IsTyping bool    `json:"isTyping,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	Before   string  `json:"before,omitempty"`
}

// messageItem is the wire shape of a message. The "_id" key is kept for
// compatibility with existing clients.
type messageItem struct {
	ID          string     `json:"_id"`
	ChatID      string     `json:"chatId"`
	SenderID    string     `json:"senderId"`
	Text        string     `json:"text"`
	ClientID    *string    `json:"clientId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	SeenAt      *time.Time `json:"seenAt,omitempty"`
}

func toMessageItem(m chat.Message) messageItem {
	return messageItem{
		ID:          m.ID,
		ChatID:      m.ConversationID,
		SenderID:    m.SenderID,
		Text:        m.Text,
		ClientID:    m.ClientID,
		CreatedAt:   m.CreatedAt,
		DeliveredAt: m.DeliveredAt,
		SeenAt:      m.SeenAt,
	}
}

func toMessageItems(msgs []chat.Message) []messageItem {
	items := make([]messageItem, len(msgs))
	for i, m := range msgs {
		items[i] = toMessageItem(m)
	}
	return items
}

type connectedFrame struct {
	Type string `json:"type"`
}

type joinedFrame struct {
	Type   string `json:"type"`
	ChatID string `json:"chatId"`
}

type historyFrame struct {
	Type       string        `json:"type"`
	ChatID     string        `json:"chatId"`
	Items      []messageItem `json:"items"`
	NextCursor *string       `json:"nextCursor"`
}

type ackFrame struct {
	Type      string    `json:"type"`
	ClientID  *string   `json:"clientId,omitempty"`
	ServerID  string    `json:"serverId"`
	CreatedAt time.Time `json:"createdAt"`
}

type newMessageFrame struct {
	Type string `json:"type"`
	messageItem
}

type readFrame struct {
	Type   string    `json:"type"`
	ChatID string    `json:"chatId"`
	By     string    `json:"by"`
	At     time.Time `json:"at"`
}

type typingFrame struct {
	Type     string `json:"type"`
	ChatID   string `json:"chatId"`
	UID      string `json:"uid"`
	IsTyping bool   `json:"isTyping"`
}

type presenceFrame struct {
	Type   string    `json:"type"`
	UID    string    `json:"uid"`
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}
