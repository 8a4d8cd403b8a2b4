package task

import (
	"context"
	"encoding/json"
	"time"

	qport "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/queue/port"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/pkg/logger"
)

// NotifyOfflineTaskType is the queue task name for notifying a recipient who
// had no live connection when a message arrived.
const NotifyOfflineTaskType = "chat:notify_offline"

// NotifyOfflinePayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type NotifyOfflinePayload struct {
	RecipientID string `json:"recipientId"`
	ChatID      string `json:"chatId"`
	MessageID   string `json:"messageId"`
	SenderID    string `json:"senderId"`
}

// EnqueueNotifyOffline schedules the notification. UniqueTTL makes retried
// sends with the same payload collapse into one task.
func EnqueueNotifyOffline(ctx context.Context, client qport.Client, p NotifyOfflinePayload) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = client.Enqueue(ctx, qport.Task{Type: NotifyOfflineTaskType, Payload: b},
		qport.EnqueueOption{Queue: "chat", MaxRetry: 5, UniqueTTL: time.Minute})
	return err
}

// RegisterNotifyOfflineTask binds the task handler to the provided server.
// Delivery to an actual push gateway is an external collaborator; the handler
// records the intent so a gateway can be wired in without touching the
// ingestion path.
func RegisterNotifyOfflineTask(srv qport.Server) {
	srv.Register(NotifyOfflineTaskType, func(ctx context.Context, t qport.Task) error {
		var p NotifyOfflinePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}
		logger.Info().
			Str("recipient", p.RecipientID).
			Str("chat", p.ChatID).
			Str("message", p.MessageID).
			Msg("offline recipient notification")
		return nil
	})
}
