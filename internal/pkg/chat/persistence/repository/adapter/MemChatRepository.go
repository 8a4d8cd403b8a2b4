package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	chat "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/domain"
	repository "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/port"
)

// MemChatRepository is an in-memory ChatRepository with the same semantics as
// the Postgres adapter, including clientID uniqueness signaling. Used by tests
// and for running the server without a database.
type MemChatRepository struct {
	mu            sync.Mutex
	conversations map[string]*chat.Conversation
	messages      map[string][]chat.Message // conversationID -> append order
}

func NewMemChatRepository() *MemChatRepository {
	return &MemChatRepository{
		conversations: make(map[string]*chat.Conversation),
		messages:      make(map[string][]chat.Message),
	}
}

// Ensure interface compliance at compile time
var _ repository.ChatRepository = (*MemChatRepository)(nil)

func (r *MemChatRepository) UpsertConversationOnJoin(ctx context.Context, id string, members []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLocked(id, members)
	return nil
}

func (r *MemChatRepository) RecordMessageAndBumpUnread(ctx context.Context, members []string, m chat.Message, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ClientID != nil {
		for _, existing := range r.messages[m.ConversationID] {
			if existing.ClientID != nil && *existing.ClientID == *m.ClientID {
				return repository.ErrDuplicateClientID
			}
		}
	}

	c := r.ensureLocked(m.ConversationID, members)
	c.LastMessage = &chat.LastMessage{Text: m.Text, SenderID: m.SenderID}
	at := m.CreatedAt
	c.LastMessageAt = &at
	c.Unread[recipientID]++

	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	return nil
}

func (r *MemChatRepository) FindMessageByClientID(ctx context.Context, conversationID, clientID string) (*chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages[conversationID] {
		if m.ClientID != nil && *m.ClientID == clientID {
			found := m
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MemChatRepository) QueryMessagesBefore(ctx context.Context, conversationID string, before *chat.Cursor, limit int) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}

	all := r.messages[conversationID]
	filtered := make([]chat.Message, 0, len(all))
	for _, m := range all {
		if before != nil && !olderThan(m, before) {
			continue
		}
		filtered = append(filtered, m)
	}

	// newest first, id as tiebreak
	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		}
		return filtered[i].ID > filtered[j].ID
	})

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (r *MemChatRepository) MarkConversationRead(ctx context.Context, conversationID, readerID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[conversationID]
	if !ok {
		return nil
	}
	c.Unread[readerID] = 0
	c.LastReadAt[readerID] = at
	return nil
}

func (r *MemChatRepository) ListConversationsForMember(ctx context.Context, memberID string) ([]chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var convs []chat.Conversation
	for _, c := range r.conversations {
		if c.HasMember(memberID) {
			convs = append(convs, cloneConversation(c))
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		switch {
		case convs[i].LastMessageAt == nil:
			return false
		case convs[j].LastMessageAt == nil:
			return true
		default:
			return convs[i].LastMessageAt.After(*convs[j].LastMessageAt)
		}
	})
	return convs, nil
}

func (r *MemChatRepository) ensureLocked(id string, members []string) *chat.Conversation {
	if c, ok := r.conversations[id]; ok {
		return c
	}
	c := &chat.Conversation{
		ID:         id,
		Members:    append([]string(nil), members...),
		Unread:     make(map[string]int, len(members)),
		LastReadAt: make(map[string]time.Time),
		CreatedAt:  time.Now().UTC(),
	}
	for _, m := range members {
		c.Unread[m] = 0
	}
	r.conversations[id] = c
	return c
}

func olderThan(m chat.Message, c *chat.Cursor) bool {
	if m.CreatedAt.Before(c.At) {
		return true
	}
	if c.ID != "" && m.CreatedAt.Equal(c.At) {
		return m.ID < c.ID
	}
	return false
}

func cloneConversation(c *chat.Conversation) chat.Conversation {
	out := *c
	out.Members = append([]string(nil), c.Members...)
	out.Unread = make(map[string]int, len(c.Unread))
	for k, v := range c.Unread {
		out.Unread[k] = v
	}
	out.LastReadAt = make(map[string]time.Time, len(c.LastReadAt))
	for k, v := range c.LastReadAt {
		out.LastReadAt[k] = v
	}
	if c.LastMessage != nil {
		lm := *c.LastMessage
		out.LastMessage = &lm
	}
	if c.LastMessageAt != nil {
		at := *c.LastMessageAt
		out.LastMessageAt = &at
	}
	return out
}
