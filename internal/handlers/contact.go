package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devjasani79/WhatsUpDev/internal/database"
	"github.com/devjasani79/WhatsUpDev/internal/models"
	"github.com/devjasani79/WhatsUpDev/pkg/logger"
	"github.com/devjasani79/WhatsUpDev/pkg/utils"
)

func ListContacts(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var user models.User
	if err := database.DB.Preload("Contacts").First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	ids := make([]string, len(user.Contacts))
	for i, u := range user.Contacts {
		ids[i] = u.ID
	}
	online := database.OnlineUsers(ids)
	for i := range user.Contacts {
		if online[user.Contacts[i].ID] {
			user.Contacts[i].IsOnline = true
		}
	}

	c.JSON(http.StatusOK, gin.H{"contacts": user.Contacts})
}

type AddContactInput struct {
	UserID string `json:"userId" binding:"required"`
}

// AddContact puts a registered user on the caller's contact list; chat
// creation is gated on this membership.
func AddContact(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var input AddContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if input.UserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot add yourself as a contact"})
		return
	}

	var target models.User
	if err := database.DB.First(&target, "id = ?", input.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	user := models.User{ID: userID}
	if err := database.DB.Model(&user).Association("Contacts").Append(&target); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to add contact"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contact": target})
}

type ImportedContactInput struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Email       string `json:"email"`
}

type ImportContactsInput struct {
	Contacts []ImportedContactInput `json:"contacts" binding:"required"`
}

// ImportContacts takes already-parsed address book entries (the client
// owns CSV/vCard parsing), normalizes the phone numbers, records them,
// and links + auto-adds any that belong to registered users.
func ImportContacts(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var input ImportContactsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	now := time.Now()
	imported := 0
	linked := 0

	for _, entry := range input.Contacts {
		phone := utils.NormalizePhone(entry.PhoneNumber)
		if phone == "" {
			continue
		}

		record := models.ImportedContact{
			OwnerID:      userID,
			Name:         entry.Name,
			PhoneNumber:  phone,
			Email:        entry.Email,
			Synced:       true,
			LastSyncedAt: now,
		}

		var registered models.User
		if err := database.DB.Where("phone_number = ? AND id <> ?", phone, userID).First(&registered).Error; err == nil {
			record.IsRegistered = true
			record.UserID = &registered.ID

			owner := models.User{ID: userID}
			if err := database.DB.Model(&owner).Association("Contacts").Append(&models.User{ID: registered.ID}); err != nil {
				logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to auto-add registered contact")
			} else {
				linked++
			}
		}

		// Re-imports refresh the existing row instead of duplicating it
		var existing models.ImportedContact
		err := database.DB.Where("owner_id = ? AND phone_number = ?", userID, phone).First(&existing).Error
		if err == nil {
			database.DB.Model(&existing).Updates(map[string]interface{}{
				"name":           record.Name,
				"email":          record.Email,
				"is_registered":  record.IsRegistered,
				"user_id":        record.UserID,
				"synced":         true,
				"last_synced_at": now,
			})
		} else {
			if err := database.DB.Create(&record).Error; err != nil {
				logger.Warn().Err(err).Msg("Failed to store imported contact")
				continue
			}
		}
		imported++
	}

	database.DB.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"contacts_last_synced": now,
		"contact_sync_count":   gorm.Expr("contact_sync_count + 1"),
	})

	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"linked":   linked,
		"syncedAt": now,
	})
}
