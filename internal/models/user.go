package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID UserID

	// Email is the user's email address (unique, lowercase).
	// Used for login and for inviting members to groups.
	Email string

	// DisplayName is the name shown to other group members.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized in API responses.
	PasswordHash string

	// AvatarURL is an optional profile picture URL.
	AvatarURL string

	// Currency is the user's preferred display currency code (e.g. "USD").
	Currency string

	// Theme is the UI theme preference ("light" or "dark").
	Theme string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           UserID(uuid.New().String()),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Currency:     "USD",
		Theme:        "dark",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
