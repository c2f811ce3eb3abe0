package models

import "time"

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user, assigned by the store.
	ID int64

	// Username is the unique login name of the user.
	Username string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized in API responses.
	PasswordHash string

	// CreatedAt is when the account was registered.
	CreatedAt time.Time
}
