package auth

import (
	"context"

	"github.com/olchaban/receipts/internal/models"
)

// Authenticator defines the interface for authentication
// implementations. The abstraction allows swapping the credential
// scheme (password, OAuth, etc.) without touching the service layer.
type Authenticator interface {
	// Register creates a new user account with the given username and
	// credential. Returns ErrUsernameTaken if the username is already
	// registered.
	Register(ctx context.Context, username, credential string) (*models.User, error)

	// Authenticate verifies the credentials and returns the user.
	// Returns ErrInvalidCredentials on any mismatch, without revealing
	// whether the username exists.
	Authenticate(ctx context.Context, username, credential string) (*models.User, error)
}
