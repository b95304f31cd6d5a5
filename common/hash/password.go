package hash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for new password hashes.
// 12 keeps a single hash in the tens of milliseconds on current hardware.
const DefaultCost = 12

var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword hashes a plain password with bcrypt. The salt is generated
// per call, so hashing the same password twice yields different strings.
func HashPassword(plainPassword string) (string, error) {
	if plainPassword == "" {
		return "", ErrEmptyPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plainPassword), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword compares a plain password with a stored bcrypt hash.
// Malformed hashes are treated as a mismatch, never as an error.
func VerifyPassword(plainPassword, storedHash string) bool {
	if plainPassword == "" || storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plainPassword)) == nil
}
