package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devjasani79/WhatsUpDev/internal/database"
	"github.com/devjasani79/WhatsUpDev/internal/models"
)

func GetMe(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var user models.User
	if err := database.DB.Preload("Contacts").First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type UpdateMeInput struct {
	FullName        *string              `json:"fullName"`
	Status          *string              `json:"status"`
	ProfilePicture  *string              `json:"profilePicture"`
	Theme           *models.Theme        `json:"theme"`
	NotifySound     *bool                `json:"notifySound"`
	NotifyDesktop   *bool                `json:"notifyDesktop"`
	NotifyPreview   *bool                `json:"notifyPreview"`
	PrivacyLastSeen *models.PrivacyLevel `json:"privacyLastSeen"`
	ReadReceipts    *bool                `json:"readReceipts"`
}

func UpdateMe(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var input UpdateMeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.FullName != nil {
		if strings.TrimSpace(*input.FullName) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "fullName cannot be empty", "field": "fullName"})
			return
		}
		updates["full_name"] = *input.FullName
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.ProfilePicture != nil {
		updates["profile_picture"] = *input.ProfilePicture
	}
	if input.Theme != nil {
		if *input.Theme != models.ThemeLight && *input.Theme != models.ThemeDark {
			c.JSON(http.StatusBadRequest, gin.H{"message": "theme must be light or dark", "field": "theme"})
			return
		}
		updates["theme"] = *input.Theme
	}
	if input.NotifySound != nil {
		updates["notify_sound"] = *input.NotifySound
	}
	if input.NotifyDesktop != nil {
		updates["notify_desktop"] = *input.NotifyDesktop
	}
	if input.NotifyPreview != nil {
		updates["notify_preview"] = *input.NotifyPreview
	}
	if input.PrivacyLastSeen != nil {
		updates["privacy_last_seen"] = *input.PrivacyLastSeen
	}
	if input.ReadReceipts != nil {
		updates["read_receipts"] = *input.ReadReceipts
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile"})
			return
		}
	}

	var user models.User
	database.DB.First(&user, "id = ?", userID)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SearchUsers finds registered users by email, name, or phone fragment.
// Online state comes from the Redis presence set maintained by the
// websocket gateway.
func SearchUsers(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	query := strings.TrimSpace(c.Query("query"))

	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "query parameter required"})
		return
	}

	pattern := "%" + strings.ToLower(query) + "%"
	var users []models.User
	err := database.DB.
		Where("id <> ?", userID).
		Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ? OR phone_number LIKE ?", pattern, pattern, pattern).
		Limit(20).
		Find(&users).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Search failed"})
		return
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	online := database.OnlineUsers(ids)
	for i := range users {
		if online[users[i].ID] {
			users[i].IsOnline = true
		}
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
