package auth

import (
	"context"

	"github.com/evenlyhq/evenly/internal/models"
)

// Authenticator abstracts the credential scheme so the API layer does not
// care whether accounts are password-backed or something else (OAuth,
// passkeys) later.
type Authenticator interface {
	// Register creates a new account. The credential format depends on
	// the implementation; for passwords it is the plaintext password.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies credentials and returns the matching user.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks whether a credential meets the
	// implementation's requirements before any account is touched.
	ValidateCredential(credential string) error
}
