package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Connections here are never started, so payloads accumulate in the buffered
// send channel and can be drained directly.
func drain(c *Connection) []string {
	var out []string
	for {
		select {
		case p := <-c.send:
			out = append(out, string(p))
		default:
			return out
		}
	}
}

func TestAttachDetachPresenceEdges(t *testing.T) {
	r := NewRouter()

	c1 := NewConnection("alice", nil)
	c2 := NewConnection("alice", nil)

	assert.True(t, r.Attach(c1), "first connection is the online edge")
	assert.False(t, r.Attach(c2), "second connection is not")
	assert.Equal(t, 2, r.ConnectionCount("alice"))

	assert.False(t, r.Detach(c1), "one connection remains")
	assert.True(t, r.Detach(c2), "last connection is the offline edge")
	assert.Equal(t, 0, r.ConnectionCount("alice"))

	// detaching an unknown connection stays consistent
	assert.True(t, r.Detach(c1))
}

func TestInboxRoomReachesAllUserConnections(t *testing.T) {
	r := NewRouter()

	c1 := NewConnection("alice", nil)
	c2 := NewConnection("alice", nil)
	other := NewConnection("bob", nil)
	r.Attach(c1)
	r.Attach(c2)
	r.Attach(other)

	n := r.Broadcast(InboxRoom("alice"), []byte("ping"), "")
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"ping"}, drain(c1))
	assert.Equal(t, []string{"ping"}, drain(c2))
	assert.Empty(t, drain(other))
}

func TestConversationRoomBroadcast(t *testing.T) {
	r := NewRouter()

	a := NewConnection("alice", nil)
	b := NewConnection("bob", nil)
	outsider := NewConnection("carol", nil)
	r.Attach(a)
	r.Attach(b)
	r.Attach(outsider)

	room := ConversationRoom("alice_bob")
	r.Join(room, a)
	r.Join(room, b)

	n := r.Broadcast(room, []byte("hello"), "")
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"hello"}, drain(a))
	assert.Equal(t, []string{"hello"}, drain(b))
	assert.Empty(t, drain(outsider))

	// typing-style exclusion: the emitting session must not hear itself
	n = r.Broadcast(room, []byte("typing"), a.SessionID)
	assert.Equal(t, 1, n)
	assert.Empty(t, drain(a))
	assert.Equal(t, []string{"typing"}, drain(b))
}

func TestLeaveAndDetachCleanRooms(t *testing.T) {
	r := NewRouter()

	a := NewConnection("alice", nil)
	b := NewConnection("bob", nil)
	r.Attach(a)
	r.Attach(b)

	room := ConversationRoom("alice_bob")
	r.Join(room, a)
	r.Join(room, b)

	r.Leave(room, a)
	assert.Equal(t, 1, r.Broadcast(room, []byte("x"), ""))
	drain(b)

	// detach removes remaining memberships implicitly
	r.Detach(b)
	assert.Equal(t, 0, r.Broadcast(room, []byte("y"), ""))
}

func TestJoinRequiresAttachedSession(t *testing.T) {
	r := NewRouter()
	ghost := NewConnection("ghost", nil)

	r.Join(ConversationRoom("a_b"), ghost)
	assert.Equal(t, 0, r.Broadcast(ConversationRoom("a_b"), []byte("x"), ""))
}

func TestBroadcastToEmptyRoom(t *testing.T) {
	r := NewRouter()
	require.Equal(t, 0, r.Broadcast("nope", []byte("x"), ""))
}
