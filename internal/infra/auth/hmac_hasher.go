// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"strings"

	"spurt/internal/domain/entity"
	domainerrors "spurt/internal/domain/errors"
	"spurt/internal/domain/service"
	"spurt/internal/errors"
)

// hmacHasher is a concrete implementation of the PasswordHasher interface using HMAC-SHA-512
// keyed by a random per-credential salt.
type hmacHasher struct{}

// NewHMACHasher is the constructor for hmacHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewHMACHasher() service.PasswordHasher {
	return &hmacHasher{}
}

// Hash generates a fresh salt and the keyed hash of password.
func (h *hmacHasher) Hash(password string) ([]byte, []byte, error) {
	if isBlank(password) {
		return nil, nil, errors.Wrap(domainerrors.ErrInvalidInput, "password must not be blank")
	}

	salt := make([]byte, entity.PasswordSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, errors.Wrap(err, "failed to generate password salt")
	}

	return computeHash(password, salt), salt, nil
}

// Verify compares a plaintext password with a stored hash and salt.
func (h *hmacHasher) Verify(password string, storedHash, storedSalt []byte) (bool, error) {
	if isBlank(password) {
		return false, errors.Wrap(domainerrors.ErrInvalidInput, "password must not be blank")
	}
	if len(storedHash) != entity.PasswordHashSize {
		return false, errors.Wrapf(domainerrors.ErrMalformedCredential, "stored hash is %d bytes, want %d", len(storedHash), entity.PasswordHashSize)
	}
	if len(storedSalt) != entity.PasswordSaltSize {
		return false, errors.Wrapf(domainerrors.ErrMalformedCredential, "stored salt is %d bytes, want %d", len(storedSalt), entity.PasswordSaltSize)
	}

	return hmac.Equal(computeHash(password, storedSalt), storedHash), nil
}

func computeHash(password string, salt []byte) []byte {
	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte(password))

	return mac.Sum(nil)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
