package uid

import "github.com/google/uuid"

// New generates a new unique identifier. Staged records use it as their
// client idempotency key, minted once at creation time.
func New() string {
	return uuid.New().String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
