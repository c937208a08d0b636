package utils

import "github.com/google/uuid"

// GenerateID returns a new random ID for any of our string-keyed models.
func GenerateID() string {
	return uuid.New().String()
}
