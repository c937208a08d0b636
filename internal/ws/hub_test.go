package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testClient(userID string) *Client {
	return &Client{
		UserID: userID,
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
	}
}

func received(c *Client) []string {
	var frames []string
	for {
		select {
		case f := <-c.send:
			frames = append(frames, string(f))
		default:
			return frames
		}
	}
}

func TestHubConnectionRefCount(t *testing.T) {
	hub := NewHub()

	tab1 := testClient("u1")
	tab2 := testClient("u1")

	assert.True(t, hub.Register(tab1), "first connection flips online")
	assert.False(t, hub.Register(tab2), "second tab is not a presence change")
	assert.Equal(t, 2, hub.Connections("u1"))

	assert.False(t, hub.Unregister(tab1), "one tab left, still online")
	assert.Equal(t, 1, hub.Connections("u1"))

	assert.True(t, hub.Unregister(tab2), "last connection flips offline")
	assert.Equal(t, 0, hub.Connections("u1"))

	// Double unregister is a no-op, never a second offline flip
	assert.False(t, hub.Unregister(tab2))
}

func TestHubRoomFanout(t *testing.T) {
	hub := NewHub()

	sender := testClient("u1")
	member := testClient("u2")
	outsider := testClient("u3")
	for _, c := range []*Client{sender, member, outsider} {
		hub.Register(c)
	}

	hub.Join("chat1", sender)
	hub.Join("chat1", member)

	hub.ToRoom("chat1", sender, []byte("typing"))

	assert.Empty(t, received(sender), "emitter is excluded")
	assert.Equal(t, []string{"typing"}, received(member))
	assert.Empty(t, received(outsider), "non-members never see room traffic")
}

func TestHubToUserReachesEveryConnection(t *testing.T) {
	hub := NewHub()

	phone := testClient("u1")
	laptop := testClient("u1")
	other := testClient("u2")
	for _, c := range []*Client{phone, laptop, other} {
		hub.Register(c)
	}

	hub.ToUser("u1", []byte("hello"))

	assert.Equal(t, []string{"hello"}, received(phone))
	assert.Equal(t, []string{"hello"}, received(laptop))
	assert.Empty(t, received(other))
}

func TestHubUnregisterClearsRooms(t *testing.T) {
	hub := NewHub()

	c := testClient("u1")
	peer := testClient("u2")
	hub.Register(c)
	hub.Register(peer)

	hub.Join("chat1", c)
	hub.Join("chat1", peer)
	hub.Join("chat2", c)
	assert.True(t, hub.InRoom("chat1", c))

	hub.Unregister(c)

	assert.False(t, hub.InRoom("chat1", c))
	assert.False(t, hub.InRoom("chat2", c))
	assert.True(t, hub.InRoom("chat1", peer), "other members unaffected")

	hub.ToRoom("chat1", nil, []byte("after"))
	assert.Empty(t, received(c))
	assert.Equal(t, []string{"after"}, received(peer))
}

func TestHubBroadcastExcludesOrigin(t *testing.T) {
	hub := NewHub()

	origin := testClient("u1")
	peer := testClient("u2")
	hub.Register(origin)
	hub.Register(peer)

	hub.Broadcast(origin, []byte("user online"))

	assert.Empty(t, received(origin))
	assert.Equal(t, []string{"user online"}, received(peer))
}
