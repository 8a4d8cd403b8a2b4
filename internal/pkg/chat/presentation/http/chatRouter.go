package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/cache/port"
	qport "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/queue/port"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/realtime"
	repoAdapter "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/adapter"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/presentation/controller"
)

// RegisterRoutes registers chat-related endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, cache cacheport.Cache, queue qport.Client, router *realtime.Router) {
	repo := repoAdapter.NewPgChatRepository(pool)

	listCtl := controller.NewListChatsController(repo, cache)
	historyCtl := controller.NewGetHistoryController(repo)
	socketCtl := controller.NewChatSocketController(repo, cache, queue, router)

	// GET /api/v1/chats?uid= -> conversation list for a member
	g.GET("/chats", listCtl.Handle())

	// GET /api/v1/chats/:chatId/messages -> one history page
	g.GET("/chats/:chatId/messages", historyCtl.Handle())

	// GET /api/v1/chat/ws?uid= -> websocket endpoint for realtime chat
	g.GET("/chat/ws", socketCtl.Handle())
}
