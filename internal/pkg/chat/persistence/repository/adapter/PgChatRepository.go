package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/domain"
	repository "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/persistence/repository/port"
)

// PgChatRepository persists conversations and messages in Postgres.
// Conversation aggregate state (lastMessage, unread, lastReadAt) lives on a
// single row so every mutation is one atomic statement; the message insert
// and the aggregate bump share a transaction.
type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

// Ensure interface compliance at compile time
var _ repository.ChatRepository = (*PgChatRepository)(nil)

const uniqueViolation = "23505"

func (r *PgChatRepository) UpsertConversationOnJoin(ctx context.Context, id string, members []string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	if len(members) != 2 {
		return fmt.Errorf("PgChatRepository: want 2 members, got %d", len(members))
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversations (id, members, unread, last_read_at, created_at)
		VALUES ($1, $2, jsonb_build_object($3::text, 0, $4::text, 0), '{}'::jsonb, now())
		ON CONFLICT (id) DO NOTHING
	`, id, members, members[0], members[1])
	return err
}

func (r *PgChatRepository) RecordMessageAndBumpUnread(ctx context.Context, members []string, m chat.Message, recipientID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	if len(members) != 2 {
		return fmt.Errorf("PgChatRepository: want 2 members, got %d", len(members))
	}

	snapshot, err := json.Marshal(chat.LastMessage{Text: m.Text, SenderID: m.SenderID})
	if err != nil {
		return fmt.Errorf("PgChatRepository: encode last message: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lazy creation path: the conflict branch never resets the peer's counter,
	// only bumps the recipient's.
	_, err = tx.Exec(ctx, `
		INSERT INTO conversations (id, members, last_message, last_message_at, unread, last_read_at, created_at)
		VALUES ($1, $2, $3::jsonb, $4, jsonb_build_object($5::text, 1, $6::text, 0), '{}'::jsonb, now())
		ON CONFLICT (id) DO UPDATE SET
			last_message    = EXCLUDED.last_message,
			last_message_at = EXCLUDED.last_message_at,
			unread          = jsonb_set(conversations.unread, ARRAY[$5::text],
			                  to_jsonb(COALESCE((conversations.unread->>$5)::int, 0) + 1))
	`, m.ConversationID, members, snapshot, m.CreatedAt, recipientID, m.SenderID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, text, client_id, created_at, delivered_at, seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, m.ID, m.ConversationID, m.SenderID, m.Text, m.ClientID, m.CreatedAt, m.DeliveredAt, m.SeenAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicateClientID
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgChatRepository) FindMessageByClientID(ctx context.Context, conversationID, clientID string) (*chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, conversation_id, sender_id, text, client_id, created_at, delivered_at, seen_at
		FROM messages
		WHERE conversation_id = $1 AND client_id = $2
	`, conversationID, clientID)

	m, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PgChatRepository) QueryMessagesBefore(ctx context.Context, conversationID string, before *chat.Cursor, limit int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, conversation_id, sender_id, text, client_id, created_at, delivered_at, seen_at
		FROM messages
		WHERE conversation_id = $1`
	args := []any{conversationID}

	switch {
	case before == nil:
		// unconstrained
	case before.ID == "":
		query += " AND created_at < $2"
		args = append(args, before.At)
	default:
		// Composite boundary so pages chain exactly even when createdAt
		// values collide; uuidv7 ids sort in creation order.
		query += " AND (created_at < $2 OR (created_at = $2 AND id < $3))"
		args = append(args, before.At, before.ID)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT %d", limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

func (r *PgChatRepository) MarkConversationRead(ctx context.Context, conversationID, readerID string, at time.Time) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE conversations SET
			unread       = jsonb_set(unread, ARRAY[$2::text], '0'::jsonb),
			last_read_at = jsonb_set(last_read_at, ARRAY[$2::text], to_jsonb($3::text))
		WHERE id = $1
	`, conversationID, readerID, at.UTC().Format(time.RFC3339Nano))
	return err
}

func (r *PgChatRepository) ListConversationsForMember(ctx context.Context, memberID string) ([]chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, members, last_message, last_message_at, unread, last_read_at, created_at
		FROM conversations
		WHERE $1 = ANY(members)
		ORDER BY last_message_at DESC NULLS LAST
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []chat.Conversation
	for rows.Next() {
		var (
			c        chat.Conversation
			snapshot []byte
			lastRead map[string]time.Time
		)
		if err := rows.Scan(&c.ID, &c.Members, &snapshot, &c.LastMessageAt, &c.Unread, &lastRead, &c.CreatedAt); err != nil {
			return nil, err
		}
		if len(snapshot) > 0 {
			var lm chat.LastMessage
			if err := json.Unmarshal(snapshot, &lm); err != nil {
				return nil, fmt.Errorf("PgChatRepository: decode last message: %w", err)
			}
			c.LastMessage = &lm
		}
		c.LastReadAt = lastRead
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func scanMessage(row pgx.Row) (*chat.Message, error) {
	var m chat.Message
	if err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.ClientID,
		&m.CreatedAt, &m.DeliveredAt, &m.SeenAt); err != nil {
		return nil, err
	}
	return &m, nil
}
