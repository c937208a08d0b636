package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devjasani79/WhatsUpDev/internal/database"
	"github.com/devjasani79/WhatsUpDev/internal/models"
	"github.com/devjasani79/WhatsUpDev/pkg/errors"
)

// ListChats returns every chat the caller participates in, most recently
// updated first, with participants, the last message, and the caller's
// unread counter.
func ListChats(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var chats []models.Chat
	err := database.DB.
		Joins("JOIN chat_participants cp ON cp.chat_id = chats.id AND cp.user_id = ?", userID).
		Preload("Participants").
		// Only the caller's own member row; other users' unread counters
		// and mute state are not theirs to see
		Preload("Members", "user_id = ?", userID).
		Preload("LastMessage").
		Preload("LastMessage.Sender").
		Order("chats.updated_at DESC").
		Find(&chats).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch chats"})
		return
	}

	// Decorate participant presence from the gateway's Redis set
	idSet := map[string]struct{}{}
	for _, chat := range chats {
		for _, p := range chat.Participants {
			idSet[p.ID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	online := database.OnlineUsers(ids)
	for ci := range chats {
		for pi := range chats[ci].Participants {
			if online[chats[ci].Participants[pi].ID] {
				chats[ci].Participants[pi].IsOnline = true
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

type CreateChatInput struct {
	ParticipantID string `json:"participantId" binding:"required"`
}

// CreateChat gets or creates the direct chat between the caller and a
// contact. Creating twice for the same pair always lands on the same chat.
func CreateChat(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var input CreateChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if input.ParticipantID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot start a chat with yourself"})
		return
	}

	var caller models.User
	if err := database.DB.Preload("Contacts").First(&caller, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	if !caller.HasContact(input.ParticipantID) {
		c.Error(errors.Forbidden("You can only chat with users from your contacts list").
			WithCode(errors.CodeNotInContacts))
		return
	}

	// Existing direct chat for this unordered pair wins
	var existing models.Chat
	err := database.DB.
		Joins("JOIN chat_participants p1 ON p1.chat_id = chats.id AND p1.user_id = ?", userID).
		Joins("JOIN chat_participants p2 ON p2.chat_id = chats.id AND p2.user_id = ?", input.ParticipantID).
		Where("chats.is_group = ?", false).
		First(&existing).Error
	if err == nil {
		database.DB.Preload("Participants").Preload("Members", "user_id = ?", userID).First(&existing, "id = ?", existing.ID)
		c.JSON(http.StatusOK, gin.H{"chat": existing})
		return
	}

	chat := models.Chat{
		IsGroup: false,
		Participants: []models.User{
			{ID: userID},
			{ID: input.ParticipantID},
		},
	}
	if err := database.DB.Create(&chat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create chat"})
		return
	}

	members := []models.ChatMember{
		{ChatID: chat.ID, UserID: userID},
		{ChatID: chat.ID, UserID: input.ParticipantID},
	}
	if err := database.DB.Create(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create chat"})
		return
	}

	database.DB.Preload("Participants").Preload("Members", "user_id = ?", userID).First(&chat, "id = ?", chat.ID)
	c.JSON(http.StatusCreated, gin.H{"chat": chat})
}

type CreateGroupChatInput struct {
	Name    string   `json:"name" binding:"required"`
	UserIDs []string `json:"userIds" binding:"required,min=2"`
}

// CreateGroupChat creates a named group with the caller as admin.
func CreateGroupChat(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var input CreateGroupChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Group name required", "field": "name"})
		return
	}

	participantIDs := map[string]struct{}{userID: {}}
	for _, id := range input.UserIDs {
		participantIDs[id] = struct{}{}
	}

	var count int64
	ids := make([]string, 0, len(participantIDs))
	for id := range participantIDs {
		ids = append(ids, id)
	}
	database.DB.Model(&models.User{}).Where("id IN ?", ids).Count(&count)
	if int(count) != len(ids) {
		c.JSON(http.StatusNotFound, gin.H{"message": "One or more users not found"})
		return
	}

	participants := make([]models.User, len(ids))
	for i, id := range ids {
		participants[i] = models.User{ID: id}
	}

	chat := models.Chat{
		IsGroup:      true,
		GroupName:    input.Name,
		GroupAdminID: &userID,
		Participants: participants,
	}
	if err := database.DB.Create(&chat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create group chat"})
		return
	}

	members := make([]models.ChatMember, len(ids))
	for i, id := range ids {
		members[i] = models.ChatMember{ChatID: chat.ID, UserID: id}
	}
	if err := database.DB.Create(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create group chat"})
		return
	}

	database.DB.Preload("Participants").Preload("Members", "user_id = ?", userID).First(&chat, "id = ?", chat.ID)
	c.JSON(http.StatusCreated, gin.H{"chat": chat})
}
