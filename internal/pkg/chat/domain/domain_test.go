package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationIDCommutative(t *testing.T) {
	assert.Equal(t, ConversationID("u1", "u2"), ConversationID("u2", "u1"))
	assert.Equal(t, "u1_u2", ConversationID("u2", "u1"))
	assert.NotEqual(t, ConversationID("u1", "u2"), ConversationID("u1", "u3"))
}

func TestMembersCanonicalOrder(t *testing.T) {
	assert.Equal(t, []string{"alice", "bob"}, Members("bob", "alice"))
	assert.Equal(t, []string{"alice", "bob"}, Members("alice", "bob"))
}

func TestNewMessageValidation(t *testing.T) {
	t.Run("trims text", func(t *testing.T) {
		m, err := NewMessage("a", "b", "  hi  ", nil)
		require.NoError(t, err)
		assert.Equal(t, "hi", m.Text)
		assert.Equal(t, "a_b", m.ConversationID)
		assert.Empty(t, m.ID)
		assert.True(t, m.CreatedAt.IsZero())
	})

	t.Run("rejects empty text", func(t *testing.T) {
		_, err := NewMessage("a", "b", "   ", nil)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	})

	t.Run("rejects missing recipient", func(t *testing.T) {
		_, err := NewMessage("a", "", "hi", nil)
		assert.ErrorIs(t, err, ErrMissingMember)
	})

	t.Run("rejects self send", func(t *testing.T) {
		_, err := NewMessage("a", "a", "hi", nil)
		assert.ErrorIs(t, err, ErrSameMember)
	})

	t.Run("blank client id dropped", func(t *testing.T) {
		blank := "  "
		m, err := NewMessage("a", "b", "hi", &blank)
		require.NoError(t, err)
		assert.Nil(t, m.ClientID)
	})
}

func TestParseCursor(t *testing.T) {
	t.Run("empty means no boundary", func(t *testing.T) {
		c, err := ParseCursor("")
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("composite round trip", func(t *testing.T) {
		orig := Cursor{At: time.UnixMilli(1700000000123).UTC(), ID: "018b-aaaa"}
		c, err := ParseCursor(orig.String())
		require.NoError(t, err)
		assert.True(t, c.At.Equal(orig.At))
		assert.Equal(t, orig.ID, c.ID)
	})

	t.Run("epoch millis", func(t *testing.T) {
		c, err := ParseCursor("1700000000123")
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000123), c.At.UnixMilli())
		assert.Empty(t, c.ID)
	})

	t.Run("rfc3339", func(t *testing.T) {
		c, err := ParseCursor("2024-01-02T03:04:05.678Z")
		require.NoError(t, err)
		assert.Equal(t, 2024, c.At.Year())
	})

	t.Run("garbage", func(t *testing.T) {
		for _, s := range []string{"not-a-cursor", "abc_def", "123_", "12x3"} {
			_, err := ParseCursor(s)
			assert.ErrorIs(t, err, ErrInvalidCursor, s)
		}
	})
}

func TestConversationMembers(t *testing.T) {
	c := Conversation{ID: "a_b", Members: []string{"a", "b"}}
	assert.True(t, c.HasMember("a"))
	assert.False(t, c.HasMember("z"))
	assert.Equal(t, "b", c.OtherMember("a"))
	assert.Equal(t, "", c.OtherMember("z"))
}
