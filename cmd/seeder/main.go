package main

import (
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/devjasani79/WhatsUpDev/internal/config"
	"github.com/devjasani79/WhatsUpDev/internal/database"
	"github.com/devjasani79/WhatsUpDev/internal/models"
)

// Seeds two mutual contacts with a chat between them, enough to exercise
// the client against a fresh database.
func main() {
	config.LoadConfig()
	database.Connect()

	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.ImportedContact{},
		&models.Chat{},
		&models.ChatMember{},
		&models.Message{},
		&models.MessageRead{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("Password1!"), bcrypt.DefaultCost)

	alice := models.User{Email: "alice@example.com", PhoneNumber: "+15550000001", Password: string(hash), FullName: "Alice Dev"}
	bob := models.User{Email: "bob@example.com", PhoneNumber: "+15550000002", Password: string(hash), FullName: "Bob Dev"}

	for _, u := range []*models.User{&alice, &bob} {
		if err := database.DB.Where("email = ?", u.Email).FirstOrCreate(u).Error; err != nil {
			log.Fatalf("seed user %s: %v", u.Email, err)
		}
	}

	database.DB.Model(&alice).Association("Contacts").Append(&bob)
	database.DB.Model(&bob).Association("Contacts").Append(&alice)

	chat := models.Chat{Participants: []models.User{alice, bob}}
	if err := database.DB.Create(&chat).Error; err != nil {
		log.Fatalf("seed chat: %v", err)
	}
	database.DB.Create(&[]models.ChatMember{
		{ChatID: chat.ID, UserID: alice.ID},
		{ChatID: chat.ID, UserID: bob.ID},
	})

	msg := models.Message{ChatID: chat.ID, SenderID: alice.ID, Content: "hey! welcome to WhatsupDev", Type: models.MessageText}
	if err := database.DB.Create(&msg).Error; err != nil {
		log.Fatalf("seed message: %v", err)
	}
	database.DB.Model(&chat).Update("last_message_id", msg.ID)

	log.Println("Seeded alice@example.com / bob@example.com (password: Password1!)")
}
