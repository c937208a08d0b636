package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageVideo MessageType = "video"
	MessageAudio MessageType = "audio"
)

type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// Message content is a tagged variant decided by Type: for "text" the
// Content column holds the text itself, for media types it holds the
// attachment URL and the File* columns carry the metadata. ValidateContent
// enforces the split at the send boundary.
type Message struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_messages_chat_created,priority:2" json:"createdAt"`

	ChatID   string `gorm:"index:idx_messages_chat_created,priority:1;not null" json:"chatId"`
	SenderID string `gorm:"index;not null" json:"senderId"`

	Content string        `gorm:"not null" json:"content"`
	Type    MessageType   `gorm:"type:text;default:'text';not null" json:"type"`
	Status  MessageStatus `gorm:"type:text;default:'sent';not null" json:"status"`

	// File metadata, only meaningful for media types
	FileName        string  `json:"fileName,omitempty"`
	FileSize        int64   `json:"fileSize,omitempty"`
	MimeType        string  `json:"mimeType,omitempty"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"` // audio/video

	ReadBy []MessageRead `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"readBy"`

	Sender User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Chat   *Chat `gorm:"foreignKey:ChatID" json:"chat,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// MessageRead is one read receipt. The composite primary key makes the
// receipt idempotent: re-processing a read event cannot duplicate it.
type MessageRead struct {
	MessageID string    `gorm:"primaryKey;type:text" json:"-"`
	UserID    string    `gorm:"primaryKey;type:text" json:"userId"`
	ReadAt    time.Time `json:"readAt"`
}

// FileMetadata is the wire shape clients send alongside media content.
type FileMetadata struct {
	FileName        string  `json:"fileName"`
	FileSize        int64   `json:"fileSize"`
	MimeType        string  `json:"mimeType"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
}

// ValidateContent checks the content variant against its type tag. Media
// content must be a URL with metadata whose MIME prefix matches the tag;
// text must be non-empty text.
func ValidateContent(t MessageType, content string, meta *FileMetadata) error {
	switch t {
	case MessageText:
		if strings.TrimSpace(content) == "" {
			return fmt.Errorf("text message requires non-empty content")
		}
		return nil
	case MessageImage, MessageVideo, MessageAudio:
		if !strings.HasPrefix(content, "http://") && !strings.HasPrefix(content, "https://") {
			return fmt.Errorf("%s message content must be an attachment URL", t)
		}
		if meta == nil || meta.MimeType == "" {
			return fmt.Errorf("%s message requires file metadata", t)
		}
		if !strings.HasPrefix(meta.MimeType, string(t)+"/") {
			return fmt.Errorf("mime type %q does not match message type %q", meta.MimeType, t)
		}
		return nil
	default:
		return fmt.Errorf("unknown message type %q", t)
	}
}
