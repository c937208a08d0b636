package chatclient

import "time"

// Wire shapes as the REST API serves them. Only the fields the
// reconciliation logic needs are modeled; unknown fields are ignored.

type User struct {
	ID             string    `json:"id"`
	FullName       string    `json:"fullName"`
	ProfilePicture string    `json:"profilePicture"`
	IsOnline       bool      `json:"isOnline"`
	LastSeen       time.Time `json:"lastSeen"`
}

type Chat struct {
	ID           string    `json:"id"`
	IsGroup      bool      `json:"isGroup"`
	GroupName    string    `json:"groupName,omitempty"`
	Participants []User    `json:"participants,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ReadReceipt struct {
	UserID string    `json:"userId"`
	ReadAt time.Time `json:"readAt"`
}

type Message struct {
	ID        string        `json:"id"`
	ChatID    string        `json:"chatId"`
	SenderID  string        `json:"senderId"`
	Content   string        `json:"content"`
	Type      string        `json:"type"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	ReadBy    []ReadReceipt `json:"readBy"`
	Sender    *User         `json:"sender,omitempty"`
	Chat      *Chat         `json:"chat,omitempty"`
}

// ReadBy lookup helper.
func (m *Message) ReadByUser(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
