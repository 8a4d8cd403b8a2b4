package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cacheport "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/cache/port"
	chat "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/domain"
	repository "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/port"
)

const chatListTTL = 30 * time.Second

func chatListKey(uid string) string { return "chats:" + uid }

// invalidateChatLists drops the cached conversation lists for the given
// members. Best-effort: a failed delete only means a stale list for one TTL.
func invalidateChatLists(ctx context.Context, cache cacheport.Cache, uids ...string) {
	if cache == nil {
		return
	}
	keys := make([]string, len(uids))
	for i, uid := range uids {
		keys[i] = chatListKey(uid)
	}
	_, _ = cache.Del(ctx, keys...)
}

// ConversationSummary is one entry of a member's conversation list with the
// per-member aggregate state resolved for that member.
type ConversationSummary struct {
	ChatID        string            `json:"chatId"`
	OtherUID      string            `json:"otherUid"`
	LastMessage   *chat.LastMessage `json:"lastMessage,omitempty"`
	LastMessageAt *time.Time        `json:"lastMessageAt,omitempty"`
	Unread        int               `json:"unread"`
	LastReadAt    *time.Time        `json:"lastReadAt,omitempty"`
}

// ListConversationsUseCase returns a member's conversations newest-first,
// read through the cache when one is wired.
type ListConversationsUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache // optional
}

func NewListConversationsUseCase(repo repository.ChatRepository, cache cacheport.Cache) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo, Cache: cache}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, memberID string) ([]ConversationSummary, error) {
	if memberID == "" {
		return nil, fmt.Errorf("%w: member id is required", ErrValidation)
	}

	if uc.Cache != nil {
		if raw, err := uc.Cache.Get(ctx, chatListKey(memberID)); err == nil {
			var cached []ConversationSummary
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	convs, err := uc.Repo.ListConversationsForMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		s := ConversationSummary{
			ChatID:        c.ID,
			OtherUID:      c.OtherMember(memberID),
			LastMessage:   c.LastMessage,
			LastMessageAt: c.LastMessageAt,
			Unread:        c.Unread[memberID],
		}
		if at, ok := c.LastReadAt[memberID]; ok {
			s.LastReadAt = &at
		}
		summaries = append(summaries, s)
	}

	if uc.Cache != nil {
		if raw, err := json.Marshal(summaries); err == nil {
			_ = uc.Cache.Set(ctx, chatListKey(memberID), string(raw), chatListTTL)
		}
	}
	return summaries, nil
}
