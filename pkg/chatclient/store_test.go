package chatclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func msg(id, chatID, senderID string, at time.Time) Message {
	return Message{ID: id, ChatID: chatID, SenderID: senderID, Content: "m-" + id, Type: "text", Status: "sent", CreatedAt: at}
}

func TestStoreMergeIsIdempotentAndOrdered(t *testing.T) {
	now := time.Now()
	s := NewStore("me")
	s.OpenChat("c1", []Message{
		msg("m1", "c1", "me", now.Add(-3*time.Minute)),
		msg("m2", "c1", "them", now.Add(-2*time.Minute)),
	})

	// Socket echo of m2, then a new one arriving before an older straggler
	s.ApplyMessage(msg("m2", "c1", "them", now.Add(-2*time.Minute)))
	s.ApplyMessage(msg("m4", "c1", "them", now))
	s.ApplyMessage(msg("m3", "c1", "me", now.Add(-1*time.Minute)))
	s.ApplyMessage(msg("m4", "c1", "them", now))

	got := s.Messages("c1")
	ids := make([]string, len(got))
	for i, m := range got {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"m1", "m2", "m3", "m4"}, ids)

	// The open chat never counts unread
	assert.Equal(t, 0, s.Unread("c1"))
}

func TestStoreUnreadForBackgroundChat(t *testing.T) {
	now := time.Now()
	s := NewStore("me")
	s.OpenChat("c1", nil)

	// Duplicate delivery of the same id bumps the badge once
	s.ApplyMessage(msg("b1", "c2", "them", now))
	s.ApplyMessage(msg("b1", "c2", "them", now))
	s.ApplyMessage(msg("b2", "c2", "them", now))
	assert.Equal(t, 2, s.Unread("c2"))

	// Own sends echoed back never count against us
	s.ApplyMessage(msg("b3", "c2", "me", now))
	assert.Equal(t, 2, s.Unread("c2"))

	// Background history stays empty until the chat is opened and fetched
	assert.Empty(t, s.Messages("c2"))

	s.OpenChat("c2", []Message{msg("b1", "c2", "them", now), msg("b2", "c2", "them", now)})
	assert.Equal(t, 0, s.Unread("c2"))
	assert.Len(t, s.Messages("c2"), 2)
}

func TestStoreApplyRead(t *testing.T) {
	now := time.Now()
	s := NewStore("me")
	s.OpenChat("c1", []Message{
		msg("m1", "c1", "me", now.Add(-2*time.Minute)),
		msg("m2", "c1", "them", now.Add(-1*time.Minute)),
	})

	s.ApplyRead("c1", "them")
	s.ApplyRead("c1", "them") // replay adds nothing

	got := s.Messages("c1")
	assert.True(t, got[0].ReadByUser("them"))
	assert.Len(t, got[0].ReadBy, 1)
	assert.Equal(t, "read", got[0].Status)

	// The reader's own message carries no receipt from them
	assert.False(t, got[1].ReadByUser("them"))
}

func TestStoreApplyUnsent(t *testing.T) {
	now := time.Now()
	s := NewStore("me")
	s.OpenChat("c1", []Message{
		msg("m1", "c1", "them", now.Add(-1*time.Minute)),
		msg("m2", "c1", "them", now),
	})

	s.ApplyUnsent("m1")
	got := s.Messages("c1")
	assert.Len(t, got, 1)
	assert.Equal(t, "m2", got[0].ID)

	// Unknown id is a no-op
	s.ApplyUnsent("ghost")
	assert.Len(t, s.Messages("c1"), 1)
}

func TestStoreTyping(t *testing.T) {
	s := NewStore("me")
	s.OpenChat("c1", nil)

	s.SetTyping("c1", "u2", true)
	s.SetTyping("c1", "u3", true)
	s.SetTyping("c2", "u4", true) // not the open chat, ignored
	assert.Equal(t, []string{"u2", "u3"}, s.TypingUsers("c1"))
	assert.Empty(t, s.TypingUsers("c2"))

	s.SetTyping("c1", "u2", false)
	assert.Equal(t, []string{"u3"}, s.TypingUsers("c1"))
}

func TestStoreChatResolvedFromEmbeddedChat(t *testing.T) {
	now := time.Now()
	s := NewStore("me")
	s.OpenChat("c1", nil)

	m := msg("e1", "", "them", now)
	m.Chat = &Chat{ID: "c1"}
	s.ApplyMessage(m)

	got := s.Messages("c1")
	assert.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
}
