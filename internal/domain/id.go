package domain

import "github.com/google/uuid"

// NewID generates a UUIDv7 string for metadata records.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
