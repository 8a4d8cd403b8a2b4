package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/application/usecase"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/adapter"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

func newTestRouter(repo *adapter.MemChatRepository) *gin.Engine {
	r := gin.New()
	r.GET("/chats", NewListChatsController(repo, nil).Handle())
	r.GET("/chats/:chatId/messages", NewGetHistoryController(repo).Handle())
	return r
}

func seedMessages(t *testing.T, repo *adapter.MemChatRepository, n int) string {
	t.Helper()
	uc := usecase.NewSendMessageUseCase(repo, nil)
	var chatID string
	for i := 0; i < n; i++ {
		out, err := uc.Execute(context.Background(), usecase.SendMessageInput{
			SenderID:    "u1",
			RecipientID: "u2",
			Text:        fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
		chatID = out.Message.ConversationID
	}
	return chatID
}

type historyResponse struct {
	ChatID     string        `json:"chatId"`
	Items      []messageItem `json:"items"`
	NextCursor *string       `json:"nextCursor"`
}

func TestGetHistoryEndpoint(t *testing.T) {
	repo := adapter.NewMemChatRepository()
	chatID := seedMessages(t, repo, 3)
	r := newTestRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/chats/"+chatID+"/messages?limit=2", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp historyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, chatID, resp.ChatID)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "message 1", resp.Items[0].Text)
	assert.Equal(t, "message 2", resp.Items[1].Text)
	require.NotNil(t, resp.NextCursor)

	// chain the cursor through the query string
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/chats/"+chatID+"/messages?limit=2&before="+*resp.NextCursor, nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "message 0", resp.Items[0].Text)
	assert.Nil(t, resp.NextCursor)
}

func TestGetHistoryEndpointInvalidCursor(t *testing.T) {
	repo := adapter.NewMemChatRepository()
	chatID := seedMessages(t, repo, 1)
	r := newTestRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/chats/"+chatID+"/messages?before=garbage", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListChatsEndpoint(t *testing.T) {
	repo := adapter.NewMemChatRepository()
	seedMessages(t, repo, 2)
	r := newTestRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/chats?uid=u2", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Chats []usecase.ConversationSummary `json:"chats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Chats, 1)
	assert.Equal(t, "u1", resp.Chats[0].OtherUID)
	assert.Equal(t, 2, resp.Chats[0].Unread)
	assert.Nil(t, resp.Chats[0].LastReadAt)
}

func TestListChatsEndpointMissingUID(t *testing.T) {
	r := newTestRouter(adapter.NewMemChatRepository())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/chats", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
