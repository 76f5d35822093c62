// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"spurt/internal/domain/entity"
)

// --- Input DTOs ---

// SignupInput defines the data required to create an account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	// Origin is the front-end base URL used in the confirmation link.
	Origin string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// LoginOutput is returned after a successful login.
type LoginOutput struct {
	ID    int64
	Name  string
	Email string
	Token string
	Roles string
}

// AccountUsecase defines the account lifecycle: signup, email confirmation and login.
type AccountUsecase interface {
	// Signup stores a new unverified account and sends the confirmation email in the background.
	Signup(ctx context.Context, input *SignupInput) (*entity.User, error)

	// Login authenticates a verified account and issues a credential token.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// ConfirmEmail marks the account named by a confirmation token as verified.
	ConfirmEmail(ctx context.Context, token string) error
}

// Authenticator checks an email and password against the stored credential.
type Authenticator interface {
	// Authenticate returns the user on success and ErrInvalidCredentials on any failure.
	Authenticate(ctx context.Context, email, password string) (*entity.User, error)
}
