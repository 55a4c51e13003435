package auth

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 12

// Bcrypt password hasher
// Password is sha256 digested first, so bcrypt 72 bytes input limit is never hit
type BcryptHasher struct {
	// Zero means DefaultBcryptCost
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultBcryptCost
	}

	sum := sha256.Sum256([]byte(password))
	hash, err := bcrypt.GenerateFromPassword(sum[:], cost)
	return string(hash), err
}

// Verify reports whether password matches hashedPassword
// Malformed hash is a mismatch, not an error
func (h BcryptHasher) Verify(hashedPassword string, password string) bool {
	sum := sha256.Sum256([]byte(password))
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), sum[:]) == nil
}
