package ws

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/devjasani79/WhatsUpDev/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 256 * 1024
	sendBufferSize = 256
)

// Client is one live websocket connection of one authenticated user.
type Client struct {
	UserID string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// chat rooms this connection joined; guarded by hub.mu
	rooms map[string]struct{}
}

func newClient(hub *Hub, userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
	}
}

// trySend queues a frame without blocking the hub. A connection whose
// buffer is full is too far behind to be worth keeping; it gets closed and
// recovers via reconnect + history fetch.
func (c *Client) trySend(frame []byte) {
	select {
	case c.send <- frame:
	default:
		logger.Warn().Str("user_id", c.UserID).Msg("Dropping slow websocket connection")
		go c.conn.Close()
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
