// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"
)

const (
	// PasswordHashSize is the length in bytes of a stored password hash.
	PasswordHashSize = 64
	// PasswordSaltSize is the length in bytes of a stored password salt.
	PasswordSaltSize = 128
)

// User is the credential record of an account that can sign in and manage events.
// PasswordHash and PasswordSalt are produced together by one hashing call and are
// never serialized.
type User struct {
	ID             int64     `json:"id"`             // Serial identifier, also carried in the token's groupsid claim.
	Name           string    `json:"name"`           // Display name, at most 50 characters.
	Email          string    `json:"email"`          // Login identifier; unique ignoring case.
	PasswordHash   []byte    `json:"-"`              // HMAC-SHA-512 of the password, 64 bytes.
	PasswordSalt   []byte    `json:"-"`              // HMAC key, 128 bytes.
	DateRegistered time.Time `json:"dateRegistered"` // When the account was created.
	Role           Role      `json:"role"`           // Authorization role.
	Enabled        bool      `json:"enabled"`        // Disabled accounts are kept but not used.
	EmailVerified  bool      `json:"emailVerified"`  // Set by the email confirmation flow.
}

// HasCredential reports whether a hash and salt of the expected sizes are present.
func (u *User) HasCredential() bool {
	return len(u.PasswordHash) == PasswordHashSize && len(u.PasswordSalt) == PasswordSaltSize
}

// Kind implements UniquenessCheckable.
func (u *User) Kind() EntityKind {
	return EntityKindUser
}

// UniqueKey implements UniquenessCheckable. User emails compare case-insensitively.
func (u *User) UniqueKey() string {
	return strings.TrimSpace(u.Email)
}
