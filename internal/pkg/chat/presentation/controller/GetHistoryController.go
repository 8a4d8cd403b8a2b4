package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/application/usecase"
	chat "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/domain"
	repository "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/port"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/pkg/logger"
)

// GetHistoryController serves one history page over HTTP, identical in shape
// and semantics to the chat:history event (one controller per endpoint).
type GetHistoryController struct {
	UC *usecase.GetHistoryUseCase
}

func NewGetHistoryController(repo repository.ChatRepository) *GetHistoryController {
	return &GetHistoryController{UC: usecase.NewGetHistoryUseCase(repo)}
}

func (h *GetHistoryController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID := c.Param("chatId")
		if chatID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "chatId is required"})
			return
		}

		limit := 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		before := c.Query("before")
		if before == "" {
			before = c.Query("cursor")
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		page, err := h.UC.Execute(ctx, usecase.GetHistoryInput{
			ConversationID: chatID,
			Limit:          limit,
			Before:         before,
		})
		if err != nil {
			switch {
			case errors.Is(err, chat.ErrInvalidCursor), errors.Is(err, usecase.ErrValidation):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				logger.Error().Err(err).Str("chat", chatID).Msg("history query failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"chatId":     chatID,
			"items":      toMessageItems(page.Items),
			"nextCursor": cursorString(page.NextCursor),
		})
	}
}
