package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type PrivacyLevel string

const (
	PrivacyEveryone PrivacyLevel = "everyone"
	PrivacyContacts PrivacyLevel = "contacts"
	PrivacyNobody   PrivacyLevel = "nobody"
)

type User struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber    string    `gorm:"index" json:"phoneNumber"`
	Password       string    `gorm:"not null" json:"-"`
	FullName       string    `gorm:"not null" json:"fullName"`
	ProfilePicture string    `json:"profilePicture"`
	Status         string    `gorm:"default:'Hey there! I am using WhatsupDev'" json:"status"`
	LastSeen       time.Time `json:"lastSeen"`
	IsOnline       bool      `gorm:"default:false" json:"isOnline"`

	Theme Theme `gorm:"type:text;default:'light'" json:"theme"`

	// Notification preferences
	NotifySound   bool `gorm:"default:true" json:"notifySound"`
	NotifyDesktop bool `gorm:"default:true" json:"notifyDesktop"`
	NotifyPreview bool `gorm:"default:true" json:"notifyPreview"`

	// Privacy preferences
	PrivacyLastSeen       PrivacyLevel `gorm:"type:text;default:'everyone'" json:"privacyLastSeen"`
	PrivacyProfilePicture PrivacyLevel `gorm:"type:text;default:'everyone'" json:"privacyProfilePicture"`
	PrivacyStatus         PrivacyLevel `gorm:"type:text;default:'everyone'" json:"privacyStatus"`
	ReadReceipts          bool         `gorm:"default:true" json:"readReceipts"`

	// Contact sync bookkeeping
	ContactsLastSynced *time.Time `json:"contactsLastSynced"`
	ContactSyncCount   int        `gorm:"default:0" json:"contactSyncCount"`

	// Relations
	Contacts         []User            `gorm:"many2many:user_contacts;joinForeignKey:OwnerID;joinReferences:ContactID" json:"contacts,omitempty"`
	ImportedContacts []ImportedContact `gorm:"foreignKey:OwnerID" json:"importedContacts,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.LastSeen.IsZero() {
		u.LastSeen = time.Now()
	}
	return
}

// HasContact reports whether other is in the user's contact list. The
// Contacts association must be loaded first.
func (u *User) HasContact(userID string) bool {
	for _, c := range u.Contacts {
		if c.ID == userID {
			return true
		}
	}
	return false
}

// ImportedContact is one address-book entry pushed up by a client. It is
// kept whether or not the phone number maps to a registered user, so
// invites and later sync runs can reconcile against it.
type ImportedContact struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	OwnerID     string `gorm:"index:idx_imported_owner_phone,unique;not null" json:"-"`
	Name        string `gorm:"not null" json:"name"`
	PhoneNumber string `gorm:"index:idx_imported_owner_phone,unique;not null" json:"phoneNumber"` // normalized
	Email       string `json:"email,omitempty"`

	IsRegistered bool       `gorm:"default:false" json:"isRegistered"`
	UserID       *string    `gorm:"type:text" json:"userId,omitempty"` // linked registered user
	InviteSent   bool       `gorm:"default:false" json:"inviteSent"`
	Synced       bool       `gorm:"default:false" json:"synced"`
	LastSyncedAt time.Time  `json:"lastSyncedAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ic *ImportedContact) BeforeCreate(tx *gorm.DB) (err error) {
	if ic.ID == "" {
		ic.ID = uuid.New().String()
	}
	if ic.LastSyncedAt.IsZero() {
		ic.LastSyncedAt = time.Now()
	}
	return
}
