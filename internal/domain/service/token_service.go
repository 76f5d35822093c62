package service

import (
	"time"

	"spurt/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
)

// PurposeEmailConfirmation marks tokens that may only confirm an email address.
const PurposeEmailConfirmation = "email_confirmation"

// Claims defines the custom claims carried by credential tokens.
// The registered subject holds the user's email.
type Claims struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	GroupSID string `json:"groupsid"` // Decimal user id.
	// Purpose is empty on access tokens.
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates credential tokens.
type TokenIssuer interface {
	// Issue builds a signed access token for user that expires after TTL.
	Issue(user *entity.User) (string, error)

	// IssueConfirmation builds a token that is only accepted by ValidateConfirmation.
	IssueConfirmation(user *entity.User) (string, error)

	// Validate checks the signature and expiry of an access token and returns its claims.
	Validate(tokenString string) (*Claims, error)

	// ValidateConfirmation checks an email confirmation token.
	ValidateConfirmation(tokenString string) (*Claims, error)

	// TTL returns the lifetime of issued tokens.
	TTL() time.Duration
}
