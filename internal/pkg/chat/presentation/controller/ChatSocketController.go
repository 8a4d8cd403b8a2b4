package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	cacheport "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/cache/port"
	qport "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/queue/port"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/realtime"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/application/task"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/application/usecase"
	chat "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/domain"
	repository "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/port"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/pkg/logger"
)

// ChatSocketController handles the websocket endpoint for realtime chat
// traffic: join/leave, message ingestion, read receipts, typing and presence.
type ChatSocketController struct {
	router          *realtime.Router
	queue           qport.Client // optional; offline notifications skipped when nil
	sendMessageUC   *usecase.SendMessageUseCase
	joinUC          *usecase.JoinConversationUseCase
	historyUC       *usecase.GetHistoryUseCase
	markReadUC      *usecase.MarkReadUseCase
	inflightTimeout time.Duration
}

func NewChatSocketController(repo repository.ChatRepository, cache cacheport.Cache, queue qport.Client, router *realtime.Router) *ChatSocketController {
	return &ChatSocketController{
		router:          router,
		queue:           queue,
		sendMessageUC:   usecase.NewSendMessageUseCase(repo, cache),
		joinUC:          usecase.NewJoinConversationUseCase(repo),
		historyUC:       usecase.NewGetHistoryUseCase(repo),
		markReadUC:      usecase.NewMarkReadUseCase(repo, cache),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects. The uid query parameter is the only identity check
// here; real authentication belongs to the transport layer in front.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		uid := c.Query("uid")
		if uid == "" {
			if payload, err := json.Marshal(errorFrame{Type: evError, Code: "unauthorized", Error: "uid is required"}); err == nil {
				_ = ws.WriteMessage(websocket.TextMessage, payload)
			}
			_ = ws.Close()
			return
		}

		conn := realtime.NewConnection(uid, ws)
		conn.Start()
		if first := ctl.router.Attach(conn); first {
			ctl.broadcastPresence(uid, "online")
		}
		defer func() {
			last := ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			if last {
				ctl.broadcastPresence(uid, "offline")
			}
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		ctl.reply(conn, connectedFrame{Type: evConnected})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case evJoin:
				ctl.handleJoin(c, conn, frame)
			case evLeave:
				ctl.handleLeave(conn, frame)
			case evSend:
				ctl.handleSend(c, conn, frame)
			case evRead:
				ctl.handleRead(c, conn, frame)
			case evTyping:
				ctl.handleTyping(conn, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

func (ctl *ChatSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	chatID, err := ctl.joinUC.Execute(ctx, usecase.JoinConversationInput{UID: conn.UID, OtherUID: frame.OtherUID})
	if err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}

	page, err := ctl.historyUC.Execute(ctx, usecase.GetHistoryInput{
		ConversationID: chatID,
		Limit:          frame.Limit,
		Before:         frame.Before,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}

	ctl.router.Join(realtime.ConversationRoom(chatID), conn)

	ctl.reply(conn, historyFrame{
		Type:       evHistory,
		ChatID:     chatID,
		Items:      toMessageItems(page.Items),
		NextCursor: cursorString(page.NextCursor),
	})
	ctl.reply(conn, joinedFrame{Type: evJoined, ChatID: chatID})
}

func (ctl *ChatSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	if frame.ChatID == "" {
		ctl.replyError(conn, "bad_request", "chatId is required")
		return
	}
	ctl.router.Leave(realtime.ConversationRoom(frame.ChatID), conn)
	ctl.reply(conn, joinedFrame{Type: evLeft, ChatID: frame.ChatID})
}

func (ctl *ChatSocketController) handleSend(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	out, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		SenderID:    conn.UID,
		RecipientID: frame.To,
		Text:        frame.Text,
		ClientID:    frame.ClientID,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}

	m := out.Message
	ctl.reply(conn, ackFrame{Type: evAck, ClientID: m.ClientID, ServerID: m.ID, CreatedAt: m.CreatedAt})

	// The original send already fanned out; a resolved duplicate only acks.
	if out.Duplicate {
		return
	}

	payload, err := json.Marshal(newMessageFrame{Type: evNewMessage, messageItem: toMessageItem(m)})
	if err != nil {
		return
	}
	ctl.router.Broadcast(realtime.InboxRoom(frame.To), payload, "")
	ctl.router.Broadcast(realtime.ConversationRoom(m.ConversationID), payload, "")

	if ctl.queue != nil && ctl.router.ConnectionCount(frame.To) == 0 {
		err := task.EnqueueNotifyOffline(ctx, ctl.queue, task.NotifyOfflinePayload{
			RecipientID: frame.To,
			ChatID:      m.ConversationID,
			MessageID:   m.ID,
			SenderID:    m.SenderID,
		})
		if err != nil {
			logger.Warn().Err(err).Str("recipient", frame.To).Msg("enqueue offline notification failed")
		}
	}
}

func (ctl *ChatSocketController) handleRead(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	at, err := ctl.markReadUC.Execute(ctx, usecase.MarkReadInput{ConversationID: frame.ChatID, ReaderID: conn.UID})
	if err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}

	if payload, err := json.Marshal(readFrame{Type: evRead, ChatID: frame.ChatID, By: conn.UID, At: at}); err == nil {
		ctl.router.Broadcast(realtime.ConversationRoom(frame.ChatID), payload, "")
	}
}

// handleTyping is fire-and-forget: nothing persisted, no delivery guarantee,
// the emitting session excluded from the fan-out.
func (ctl *ChatSocketController) handleTyping(conn *realtime.Connection, frame inboundFrame) {
	if frame.ChatID == "" {
		ctl.replyError(conn, "bad_request", "chatId is required")
		return
	}
	if payload, err := json.Marshal(typingFrame{Type: evTyping, ChatID: frame.ChatID, UID: conn.UID, IsTyping: frame.IsTyping}); err == nil {
		ctl.router.Broadcast(realtime.ConversationRoom(frame.ChatID), payload, conn.SessionID)
	}
}

func (ctl *ChatSocketController) broadcastPresence(uid, status string) {
	payload, err := json.Marshal(presenceFrame{Type: evPresence, UID: uid, Status: status, At: time.Now().UTC()})
	if err != nil {
		return
	}
	ctl.router.Broadcast(realtime.InboxRoom(uid), payload, "")
}

func (ctl *ChatSocketController) reply(conn *realtime.Connection, frame any) {
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code, msg string) {
	ctl.reply(conn, errorFrame{Type: evError, Code: code, Error: msg})
}

func (ctl *ChatSocketController) replyUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, chat.ErrInvalidCursor):
		ctl.replyError(conn, "invalid_cursor", err.Error())
	case errors.Is(err, usecase.ErrValidation):
		ctl.replyError(conn, "bad_request", err.Error())
	case errors.Is(err, usecase.ErrPersistence):
		logger.Error().Err(err).Msg("chat socket storage failure")
		ctl.replyError(conn, "internal_error", "operation failed")
	default:
		ctl.replyError(conn, "internal_error", "operation failed")
	}
}

func cursorString(c *chat.Cursor) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}
