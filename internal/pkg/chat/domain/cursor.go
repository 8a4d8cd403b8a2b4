package chat

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidCursor reports an unparseable pagination boundary. Unlike message
// validation this is always surfaced to the caller.
var ErrInvalidCursor = errors.New("chat: invalid cursor")

// Cursor marks the oldest message already delivered to the client. The ID
// component breaks ties between messages sharing a createdAt, which makes
// page chaining exact even under timestamp collisions.
type Cursor struct {
	At time.Time
	ID string
}

// String renders the cursor in its wire form: "<epoch-ms>_<message-id>".
func (c Cursor) String() string {
	return strconv.FormatInt(c.At.UnixMilli(), 10) + "_" + c.ID
}

// ParseCursor accepts the composite form emitted by String, a bare
// epoch-millisecond integer, or an RFC 3339 timestamp (the last two for
// clients that only track createdAt). An empty string means "from the top".
func ParseCursor(s string) (*Cursor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if at, id, ok := strings.Cut(s, "_"); ok {
		ms, err := strconv.ParseInt(at, 10, 64)
		if err != nil || id == "" {
			return nil, ErrInvalidCursor
		}
		return &Cursor{At: time.UnixMilli(ms).UTC(), ID: id}, nil
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &Cursor{At: time.UnixMilli(ms).UTC()}, nil
	}

	if at, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &Cursor{At: at.UTC()}, nil
	}

	return nil, ErrInvalidCursor
}
