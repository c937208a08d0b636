package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat is a conversation container: exactly two participants for a direct
// chat, N for a group. Per-user state (unread counter, pin, mute) lives on
// the ChatMember rows rather than the chat itself.
type Chat struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `gorm:"index:idx_chats_updated,sort:desc" json:"updatedAt"`

	IsGroup      bool    `gorm:"default:false;index" json:"isGroup"`
	GroupName    string  `json:"groupName,omitempty"`
	GroupAvatar  string  `json:"groupAvatar,omitempty"`
	GroupAdminID *string `gorm:"type:text" json:"groupAdminId,omitempty"`

	LastMessageID *string  `gorm:"type:text" json:"-"`
	LastMessage   *Message `gorm:"foreignKey:LastMessageID" json:"lastMessage,omitempty"`

	Participants []User       `gorm:"many2many:chat_participants;" json:"participants,omitempty"`
	Members      []ChatMember `gorm:"foreignKey:ChatID" json:"members,omitempty"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// HasParticipant reports membership; Participants must be loaded.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// ChatMember carries the per-user view of a chat: the unread badge count,
// whether the user pinned it, and an optional mute expiry.
type ChatMember struct {
	ChatID      string     `gorm:"primaryKey;type:text" json:"chatId"`
	UserID      string     `gorm:"primaryKey;type:text" json:"userId"`
	UnreadCount int        `gorm:"default:0" json:"unreadCount"`
	Pinned      bool       `gorm:"default:false" json:"pinned"`
	MutedUntil  *time.Time `json:"mutedUntil,omitempty"`
}
