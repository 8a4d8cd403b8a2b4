package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cacheport "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/cache/port"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/application/usecase"
	repository "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/port"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/pkg/logger"
)

// ListChatsController serves a member's conversation list with unread and
// lastReadAt resolved for that member (one controller per endpoint).
type ListChatsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListChatsController(repo repository.ChatRepository, cache cacheport.Cache) *ListChatsController {
	return &ListChatsController{UC: usecase.NewListConversationsUseCase(repo, cache)}
}

func (h *ListChatsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.Query("uid")

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		chats, err := h.UC.Execute(ctx, uid)
		if err != nil {
			if errors.Is(err, usecase.ErrValidation) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			logger.Error().Err(err).Str("uid", uid).Msg("chat list query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"chats": chats})
	}
}
