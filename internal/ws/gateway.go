package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devjasani79/WhatsUpDev/internal/models"
	"github.com/devjasani79/WhatsUpDev/pkg/logger"
	"github.com/devjasani79/WhatsUpDev/pkg/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Gateway is the realtime protocol engine: it authenticates handshakes,
// tracks presence and room membership through its Hub, and relays events
// according to the fan-out rules. It holds no authoritative message state;
// REST is the write path of record.
type Gateway struct {
	hub *Hub
	db  *gorm.DB

	// OnPresence, when set, is notified after a user flips online/offline
	// (used to maintain the Redis presence set).
	OnPresence func(userID string, online bool)
}

func NewGateway(hub *Hub, db *gorm.DB) *Gateway {
	return &Gateway{hub: hub, db: db}
}

// Handler authenticates the handshake and runs the connection. The token
// rides a query param because browsers cannot set headers on websocket
// upgrades. Authentication failure rejects before the upgrade.
func (gw *Gateway) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var user models.User
		if err := gw.db.Select("id").First(&user, "id = ?", claims.UserID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("Websocket upgrade failed")
			return
		}

		client := newClient(gw.hub, user.ID, conn)
		gw.serve(client)
	}
}

func (gw *Gateway) serve(client *Client) {
	if first := gw.hub.Register(client); first {
		gw.setPresence(client, true)
	}
	go client.writePump()
	gw.readPump(client)
}

// setPresence flips the stored online flag and broadcasts the change.
// Fire-and-forget relative to the handshake.
func (gw *Gateway) setPresence(client *Client, online bool) {
	now := time.Now()
	updates := map[string]interface{}{"is_online": online, "last_seen": now}
	if err := gw.db.Model(&models.User{}).Where("id = ?", client.UserID).Updates(updates).Error; err != nil {
		logger.Error().Err(err).Str("user_id", client.UserID).Msg("Failed to update presence")
	}
	if gw.OnPresence != nil {
		gw.OnPresence(client.UserID, online)
	}

	event := EventUserOnline
	if !online {
		event = EventUserOffline
	}
	gw.hub.Broadcast(client, Envelope(event, PresencePayload{UserID: client.UserID, LastSeen: now}))
}

func (gw *Gateway) readPump(client *Client) {
	defer func() {
		if last := gw.hub.Unregister(client); last {
			gw.setPresence(client, false)
		}
		close(client.send)
		client.conn.Close()
	}()

	client.conn.SetReadLimit(maxFrameSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			logger.Warn().Err(err).Str("user_id", client.UserID).Msg("Malformed websocket frame")
			continue
		}

		gw.dispatch(client, ev)
	}
}

// dispatch routes one inbound event. Handlers are isolated: a failure in
// one event never terminates the connection or affects other handlers.
func (gw *Gateway) dispatch(client *Client, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("event", ev.Event).
				Str("user_id", client.UserID).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Recovered panic in websocket event handler")
		}
	}()

	switch ev.Event {
	case EventJoinChat:
		var chatID string
		if err := json.Unmarshal(ev.Data, &chatID); err != nil || chatID == "" {
			logger.Warn().Str("user_id", client.UserID).Msg("Invalid join chat payload")
			return
		}
		gw.hub.Join(chatID, client)

	case EventLeaveChat:
		var chatID string
		if err := json.Unmarshal(ev.Data, &chatID); err != nil || chatID == "" {
			return
		}
		gw.hub.Leave(chatID, client)

	case EventNewMessage:
		gw.handleNewMessage(client, ev.Data)

	case EventTyping, EventStopTyping:
		var p TypingPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil || p.ChatID == "" {
			logger.Warn().Str("user_id", client.UserID).Msg("Invalid typing payload")
			return
		}
		gw.hub.ToRoom(p.ChatID, client, Relay(ev.Event, ev.Data))

	case EventReadMessages:
		gw.handleReadMessages(client, ev.Data)

	case EventMessageUnsend:
		var p UnsendPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil || p.ChatID == "" || p.MessageID == "" {
			logger.Warn().Str("user_id", client.UserID).Msg("Invalid unsend payload")
			return
		}
		// Deletion authority is the REST path; this is the live nudge.
		gw.hub.ToRoom(p.ChatID, client, Envelope(EventMessageUnsent, UnsentPayload{MessageID: p.MessageID}))

	default:
		logger.Debug().Str("event", ev.Event).Msg("Ignoring unknown websocket event")
	}
}

// handleNewMessage relays an already-persisted message to every chat
// participant's personal room except the sender. The payload is the
// canonical REST response; it is relayed byte-for-byte. A message that
// reached at least one live recipient moves from sent to delivered.
func (gw *Gateway) handleNewMessage(client *Client, data json.RawMessage) {
	var msg models.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Warn().Err(err).Str("user_id", client.UserID).Msg("Invalid new message payload")
		return
	}
	if msg.SenderID != client.UserID {
		logger.Warn().Str("user_id", client.UserID).Str("claimed_sender", msg.SenderID).
			Msg("Dropping message announced for another sender")
		return
	}
	if msg.Chat == nil || len(msg.Chat.Participants) == 0 {
		logger.Warn().Str("user_id", client.UserID).Msg("New message payload missing chat participants")
		return
	}

	delivered := false
	frame := Relay(EventMessageReceived, data)
	for _, p := range msg.Chat.Participants {
		if p.ID == msg.SenderID {
			continue
		}
		if gw.hub.Connections(p.ID) > 0 {
			delivered = true
		}
		gw.hub.ToUser(p.ID, frame)
	}

	if delivered && msg.ID != "" {
		if err := gw.db.Model(&models.Message{}).
			Where("id = ? AND status = ?", msg.ID, models.StatusSent).
			Update("status", models.StatusDelivered).Error; err != nil {
			logger.Warn().Err(err).Str("message_id", msg.ID).Msg("Failed to mark message delivered")
		}
	}
}

// handleReadMessages appends a read receipt to every message in the chat
// that the reader did not send and has not read yet, then notifies the
// room. Storage-idempotent: the receipt's composite key dedupes replays.
func (gw *Gateway) handleReadMessages(client *Client, data json.RawMessage) {
	var p ReadPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ChatID == "" || p.UserID == "" {
		logger.Warn().Str("user_id", client.UserID).Msg("Invalid read messages payload")
		return
	}

	if err := MarkMessagesRead(gw.db, p.ChatID, p.UserID); err != nil {
		logger.Error().Err(err).Str("chat_id", p.ChatID).Msg("Failed to mark messages read")
		return
	}

	gw.hub.ToRoom(p.ChatID, client, Relay(EventMessagesRead, data))
}

// MarkMessagesRead records read receipts for every unread message in the
// chat not sent by the reader, flips their status, and clears the
// reader's unread counter. Safe to run any number of times.
func MarkMessagesRead(db *gorm.DB, chatID, readerID string) error {
	var ids []string
	sub := db.Table("message_reads").Select("message_id").Where("user_id = ?", readerID)
	if err := db.Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ?", chatID, readerID).
		Where("id NOT IN (?)", sub).
		Pluck("id", &ids).Error; err != nil {
		return err
	}

	if len(ids) > 0 {
		now := time.Now()
		reads := make([]models.MessageRead, len(ids))
		for i, id := range ids {
			reads[i] = models.MessageRead{MessageID: id, UserID: readerID, ReadAt: now}
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&reads).Error; err != nil {
			return err
		}
		if err := db.Model(&models.Message{}).
			Where("id IN ?", ids).
			Update("status", models.StatusRead).Error; err != nil {
			return err
		}
	}

	return db.Model(&models.ChatMember{}).
		Where("chat_id = ? AND user_id = ?", chatID, readerID).
		Update("unread_count", 0).Error
}
