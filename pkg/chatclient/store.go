package chatclient

import (
	"sort"
	"sync"
	"time"
)

// Store merges REST-fetched history with the live socket event stream
// into one ordered, deduplicated view per chat. All merge operations are
// idempotent and keyed by message id, so the optimistic append, the REST
// response, and the socket echo of the same message collapse into one
// entry no matter the arrival order.
type Store struct {
	mu sync.RWMutex

	userID     string
	openChatID string

	messages map[string][]Message // chatID -> history, only for opened chats
	unread   map[string]int
	typing   map[string]string   // userID -> chatID they are typing in
	seen     map[string]struct{} // message ids already counted or held
}

func NewStore(userID string) *Store {
	return &Store{
		userID:   userID,
		messages: make(map[string][]Message),
		unread:   make(map[string]int),
		typing:   make(map[string]string),
		seen:     make(map[string]struct{}),
	}
}

// OpenChat makes a chat the active one and installs its REST-fetched
// history (oldest-first from the server; re-sorted defensively since
// concurrent sends may interleave timestamps).
func (s *Store) OpenChat(chatID string, history []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.openChatID = chatID
	s.unread[chatID] = 0

	list := make([]Message, 0, len(history))
	for _, m := range history {
		list = insertMessage(list, m)
		s.seen[m.ID] = struct{}{}
	}
	s.messages[chatID] = list
}

// CloseChat clears the active chat; messages for it stay cached but new
// arrivals only bump the unread counter until it is opened again.
func (s *Store) CloseChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openChatID = ""
}

func (s *Store) OpenChatID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openChatID
}

// ApplyMessage merges one message event - socket broadcast, socket echo,
// or the local optimistic append after the REST call resolved. Open chat:
// merged into the visible list. Any other chat: its unread counter bumps
// (unless we sent the message) and history is left for a fresh fetch.
// Duplicate ids never produce a second entry or a second unread bump.
func (s *Store) ApplyMessage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ChatID == "" && msg.Chat != nil {
		msg.ChatID = msg.Chat.ID
	}

	if msg.ChatID == s.openChatID {
		s.messages[msg.ChatID] = insertMessage(s.messages[msg.ChatID], msg)
		s.seen[msg.ID] = struct{}{}
		return
	}

	// Background chat: history will be fetched fresh when opened, so only
	// the badge moves - once per message id, and never for our own sends.
	if msg.SenderID == s.userID {
		return
	}
	if _, dup := s.seen[msg.ID]; dup {
		return
	}
	s.seen[msg.ID] = struct{}{}
	s.unread[msg.ChatID]++
}

// ApplyRead marks every held message of the chat as read by the reader,
// skipping the reader's own messages and already-receipted ones. No
// round-trip; mirrors the server-side idempotent update.
func (s *Store) ApplyRead(chatID, readerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.messages[chatID]
	for i := range list {
		if list[i].SenderID == readerID || list[i].ReadByUser(readerID) {
			continue
		}
		list[i].ReadBy = append(list[i].ReadBy, ReadReceipt{UserID: readerID, ReadAt: time.Now()})
		list[i].Status = "read"
	}
}

// ApplyUnsent drops a message from every held history.
func (s *Store) ApplyUnsent(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for chatID, list := range s.messages {
		for i := range list {
			if list[i].ID == messageID {
				s.messages[chatID] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// SetTyping records a typing indicator. Events for chats other than the
// open one are ignored, per the protocol contract.
func (s *Store) SetTyping(chatID, userID string, typing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if typing {
		if chatID != s.openChatID {
			return
		}
		s.typing[userID] = chatID
		return
	}
	delete(s.typing, userID)
}

// TypingUsers lists users currently typing in a chat.
func (s *Store) TypingUsers(chatID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []string
	for userID, c := range s.typing {
		if c == chatID {
			users = append(users, userID)
		}
	}
	sort.Strings(users)
	return users
}

// Messages returns a copy of a chat's merged history, oldest first.
func (s *Store) Messages(chatID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.messages[chatID]
	out := make([]Message, len(list))
	copy(out, list)
	return out
}

func (s *Store) Unread(chatID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread[chatID]
}

// insertMessage merges by id, keeping the list sorted by stored creation
// time (id as tiebreak) rather than arrival order.
func insertMessage(list []Message, msg Message) []Message {
	for i := range list {
		if list[i].ID == msg.ID {
			list[i] = msg
			return list
		}
	}
	list = append(list, msg)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}
