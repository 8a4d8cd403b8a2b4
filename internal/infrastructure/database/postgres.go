package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect creates a pgx connection pool using the provided DSN and verifies
// the connection with a ping. The pool is process-wide and shared by all
// request handlers; connections are acquired per operation.
func Connect(ctx context.Context, dsn string, opts ...func(*pgxpool.Config)) (*pgxpool.Pool, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres: empty DSN")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	// Apply optional functional options
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	// Provide sensible defaults if the caller didn't override them
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 8
	}
	if cfg.MaxConnIdleTime == 0 {
		cfg.MaxConnIdleTime = 5 * time.Minute
	}
	if cfg.MaxConnLifetime == 0 {
		cfg.MaxConnLifetime = 60 * time.Minute
	}
	if cfg.HealthCheckPeriod == 0 {
		cfg.HealthCheckPeriod = 1 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}

	// Verify connectivity right away
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}

// migration statements are idempotent so Migrate can run on every startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
		id              text PRIMARY KEY,
		members         text[] NOT NULL,
		last_message    jsonb,
		last_message_at timestamptz,
		unread          jsonb NOT NULL DEFAULT '{}'::jsonb,
		last_read_at    jsonb NOT NULL DEFAULT '{}'::jsonb,
		created_at      timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_conversations_members
		ON conversations USING gin (members)`,
	`CREATE INDEX IF NOT EXISTS idx_conversations_last_message_at
		ON conversations (last_message_at DESC NULLS LAST)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id              uuid PRIMARY KEY,
		conversation_id text NOT NULL REFERENCES conversations(id),
		sender_id       text NOT NULL,
		text            text NOT NULL,
		client_id       text,
		created_at      timestamptz NOT NULL,
		delivered_at    timestamptz,
		seen_at         timestamptz
	)`,
	// clientID idempotency is enforced here, not by application locking
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_messages_conversation_client
		ON messages (conversation_id, client_id) WHERE client_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_messages_history
		ON messages (conversation_id, created_at DESC, id DESC)`,
}

// Migrate applies the chat schema. Safe to call on every boot.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}
