package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devjasani79/WhatsUpDev/internal/database"
	"github.com/devjasani79/WhatsUpDev/internal/models"
	"github.com/devjasani79/WhatsUpDev/pkg/errors"
	"github.com/devjasani79/WhatsUpDev/pkg/logger"
)

// loadChatForParticipant fetches the chat and enforces the participant
// gate shared by the read and send paths.
func loadChatForParticipant(c *gin.Context, chatID, userID string) (*models.Chat, bool) {
	var chat models.Chat
	if err := database.DB.Preload("Participants").First(&chat, "id = ?", chatID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
		return nil, false
	}

	if !chat.HasParticipant(userID) {
		c.Error(errors.Forbidden("You do not have permission to access this chat").
			WithCode(errors.CodeNotChatParticipant))
		return nil, false
	}
	return &chat, true
}

// ListMessages returns a chat's history oldest-first, ready for direct
// rendering; live events merge on top of this order client-side.
func ListMessages(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	chatID := c.Param("chatId")

	if _, ok := loadChatForParticipant(c, chatID, userID); !ok {
		return
	}

	var messages []models.Message
	err := database.DB.
		Where("chat_id = ?", chatID).
		Order("created_at asc").
		Preload("Sender").
		Preload("ReadBy").
		Find(&messages).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type SendMessageInput struct {
	Content      string               `json:"content" binding:"required"`
	Type         models.MessageType   `json:"type"`
	FileMetadata *models.FileMetadata `json:"fileMetadata"`
}

// SendMessage persists a message and maintains the chat's lastMessage
// pointer and the other members' unread counters. The response is the
// canonical record the client re-emits on the socket; the socket layer is
// never the write path.
func SendMessage(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	chatID := c.Param("chatId")

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if input.Type == "" {
		input.Type = models.MessageText
	}

	if err := models.ValidateContent(input.Type, input.Content, input.FileMetadata); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "field": "content"})
		return
	}

	chat, ok := loadChatForParticipant(c, chatID, userID)
	if !ok {
		return
	}

	msg := models.Message{
		ChatID:   chatID,
		SenderID: userID,
		Content:  input.Content,
		Type:     input.Type,
		Status:   models.StatusSent,
	}
	if input.FileMetadata != nil {
		msg.FileName = input.FileMetadata.FileName
		msg.FileSize = input.FileMetadata.FileSize
		msg.MimeType = input.FileMetadata.MimeType
		msg.DurationSeconds = input.FileMetadata.DurationSeconds
	}

	if err := database.DB.Create(&msg).Error; err != nil {
		logger.Error().Err(err).Str("chat_id", chatID).Msg("Failed to persist message")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send message"})
		return
	}

	// Pointer and counters are independent document writes; history order
	// stays authoritative even if one lags a crash.
	if err := database.DB.Model(&models.Chat{}).Where("id = ?", chatID).Updates(map[string]interface{}{
		"last_message_id": msg.ID,
		"updated_at":      time.Now(),
	}).Error; err != nil {
		logger.Warn().Err(err).Str("chat_id", chatID).Msg("Failed to update chat last message pointer")
	}

	if err := database.DB.Model(&models.ChatMember{}).
		Where("chat_id = ? AND user_id <> ?", chatID, userID).
		Update("unread_count", gorm.Expr("unread_count + 1")).Error; err != nil {
		logger.Warn().Err(err).Str("chat_id", chatID).Msg("Failed to bump unread counters")
	}

	database.DB.Preload("Sender").First(&msg, "id = ?", msg.ID)
	msg.Chat = chat // participants ride along for the socket fan-out

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// DeleteMessage removes a message; only its sender may. If it was the
// chat's lastMessage, the pointer is recomputed to the next most recent
// message or cleared.
func DeleteMessage(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	messageID := c.Param("messageId")

	var msg models.Message
	err := database.DB.Where("id = ? AND sender_id = ?", messageID, userID).First(&msg).Error
	if err != nil {
		// Not found and not-the-sender are indistinguishable on purpose
		c.JSON(http.StatusNotFound, gin.H{"message": "Message not found or unauthorized"})
		return
	}

	if err := database.DB.Where("message_id = ?", msg.ID).Delete(&models.MessageRead{}).Error; err != nil {
		logger.Warn().Err(err).Str("message_id", msg.ID).Msg("Failed to delete read receipts")
	}
	if err := database.DB.Delete(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete message"})
		return
	}

	var chat models.Chat
	if err := database.DB.First(&chat, "id = ?", msg.ChatID).Error; err == nil {
		if chat.LastMessageID != nil && *chat.LastMessageID == msg.ID {
			var next models.Message
			var pointer *string
			if err := database.DB.
				Where("chat_id = ?", chat.ID).
				Order("created_at desc").
				First(&next).Error; err == nil {
				pointer = &next.ID
			}
			// UpdateColumn: a delete should not bump the chat in the list
			database.DB.Model(&chat).UpdateColumn("last_message_id", pointer)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully", "messageId": msg.ID})
}
