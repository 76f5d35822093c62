// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher derives and checks salted one-way password hashes.
type PasswordHasher interface {
	// Hash returns a fresh salt and the keyed hash of password under that salt.
	// Empty or whitespace-only passwords are rejected with ErrInvalidInput.
	Hash(password string) (hash, salt []byte, err error)

	// Verify recomputes the keyed hash of password with storedSalt and compares it to storedHash.
	// It fails with ErrInvalidInput for blank passwords and ErrMalformedCredential for wrong lengths.
	Verify(password string, storedHash, storedSalt []byte) (bool, error)
}
