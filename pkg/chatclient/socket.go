package chatclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrReconnectFailed is the terminal state after the bounded reconnect
// attempts are exhausted; callers surface it instead of retrying forever.
var ErrReconnectFailed = errors.New("chatclient: reconnect attempts exhausted")

const (
	maxReconnectAttempts = 5
	baseReconnectDelay   = time.Second
)

// Event names mirror the server protocol.
const (
	evJoinChat        = "join chat"
	evLeaveChat       = "leave chat"
	evNewMessage      = "new message"
	evMessageReceived = "message received"
	evTyping          = "typing"
	evStopTyping      = "stop typing"
	evReadMessages    = "read messages"
	evMessagesRead    = "messages read"
	evMessageUnsend   = "message unsend"
	evMessageUnsent   = "message unsent"
	evUserOnline      = "user online"
	evUserOffline     = "user offline"
)

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type chatUserPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

// Socket is the live connection to the gateway. It tracks joined rooms so
// a reconnect can restore them, and hands decoded events to callbacks
// (normally Store methods plus a history refetch in OnReconnect).
type Socket struct {
	url   string
	token string

	OnMessage   func(Message)
	OnTyping    func(chatID, userID string, typing bool)
	OnRead      func(chatID, userID string)
	OnUnsent    func(messageID string)
	OnPresence  func(userID string, online bool, lastSeen time.Time)
	OnReconnect func()
	OnDown      func(error)

	mu     sync.Mutex
	conn   *websocket.Conn
	joined map[string]struct{}
	closed bool
}

func NewSocket(url, token string) *Socket {
	return &Socket{
		url:    url,
		token:  token,
		joined: make(map[string]struct{}),
	}
}

// Connect dials the gateway and starts the read loop. The read loop owns
// reconnection: bounded attempts with doubling delay, then OnDown.
func (s *Socket) Connect() error {
	conn, err := s.dial()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.readLoop(conn)
	return nil
}

func (s *Socket) dial() (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(s.url+"?token="+s.token, nil)
	return conn, err
}

// Close shuts the connection down for good; no reconnect follows.
func (s *Socket) Close() {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func (s *Socket) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			s.reconnect()
			return
		}

		var ev envelope
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		s.handle(ev)
	}
}

// reconnect retries with doubling delays. On success it re-issues the
// room joins and fires OnReconnect so the app refetches the open chat's
// history (events sent while disconnected are gone for good).
func (s *Socket) reconnect() {
	delay := baseReconnectDelay
	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		time.Sleep(delay)
		delay *= 2

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		conn, err := s.dial()
		if err != nil {
			continue
		}

		s.mu.Lock()
		s.conn = conn
		rooms := make([]string, 0, len(s.joined))
		for chatID := range s.joined {
			rooms = append(rooms, chatID)
		}
		s.mu.Unlock()

		for _, chatID := range rooms {
			s.emit(evJoinChat, chatID)
		}
		if s.OnReconnect != nil {
			s.OnReconnect()
		}

		go s.readLoop(conn)
		return
	}

	if s.OnDown != nil {
		s.OnDown(fmt.Errorf("%w after %d attempts", ErrReconnectFailed, maxReconnectAttempts))
	}
}

func (s *Socket) handle(ev envelope) {
	switch ev.Event {
	case evMessageReceived:
		var msg Message
		if json.Unmarshal(ev.Data, &msg) == nil && s.OnMessage != nil {
			s.OnMessage(msg)
		}
	case evTyping, evStopTyping:
		var p chatUserPayload
		if json.Unmarshal(ev.Data, &p) == nil && s.OnTyping != nil {
			s.OnTyping(p.ChatID, p.UserID, ev.Event == evTyping)
		}
	case evMessagesRead:
		var p chatUserPayload
		if json.Unmarshal(ev.Data, &p) == nil && s.OnRead != nil {
			s.OnRead(p.ChatID, p.UserID)
		}
	case evMessageUnsent:
		var p struct {
			MessageID string `json:"messageId"`
		}
		if json.Unmarshal(ev.Data, &p) == nil && s.OnUnsent != nil {
			s.OnUnsent(p.MessageID)
		}
	case evUserOnline, evUserOffline:
		var p struct {
			UserID   string    `json:"userId"`
			LastSeen time.Time `json:"lastSeen"`
		}
		if json.Unmarshal(ev.Data, &p) == nil && s.OnPresence != nil {
			s.OnPresence(p.UserID, ev.Event == evUserOnline, p.LastSeen)
		}
	}
}

func (s *Socket) emit(event string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(envelope{Event: event, Data: raw})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return errors.New("chatclient: not connected")
	}
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// JoinChat enters a chat room and remembers it for reconnects.
func (s *Socket) JoinChat(chatID string) error {
	s.mu.Lock()
	s.joined[chatID] = struct{}{}
	s.mu.Unlock()
	return s.emit(evJoinChat, chatID)
}

func (s *Socket) LeaveChat(chatID string) error {
	s.mu.Lock()
	delete(s.joined, chatID)
	s.mu.Unlock()
	return s.emit(evLeaveChat, chatID)
}

// SendMessage announces an already-persisted message (the REST response,
// chat participants included) for fan-out to the other participants.
func (s *Socket) SendMessage(msg Message) error {
	return s.emit(evNewMessage, msg)
}

func (s *Socket) Typing(chatID, userID string) error {
	return s.emit(evTyping, chatUserPayload{ChatID: chatID, UserID: userID})
}

func (s *Socket) StopTyping(chatID, userID string) error {
	return s.emit(evStopTyping, chatUserPayload{ChatID: chatID, UserID: userID})
}

func (s *Socket) MarkRead(chatID, userID string) error {
	return s.emit(evReadMessages, chatUserPayload{ChatID: chatID, UserID: userID})
}

func (s *Socket) Unsend(messageID, chatID string) error {
	return s.emit(evMessageUnsend, struct {
		MessageID string `json:"messageId"`
		ChatID    string `json:"chatId"`
	}{messageID, chatID})
}
