package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNoAuthHeader is returned for requests carrying no credential at all.
	ErrNoAuthHeader = errors.New("no authorization header")
	// ErrAuthenticationFailed is returned when a credential does not resolve
	// to a user.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// Identity is the resolved owner of a credential.
type Identity struct {
	UserId uuid.UUID
	Email  string
}

// Verifier resolves a bearer token to a user identity.
type Verifier interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}
