package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/cache/port"
	qport "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/queue/port"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/realtime"
	httpHandler "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, cache cacheport.Cache, queue qport.Client, router *realtime.Router) {
	v1 := r.Group("/api/v1")
	// Pass the shared infrastructure down to the HTTP layer
	httpHandler.RegisterRoutes(v1, pool, cache, queue, router)
}
