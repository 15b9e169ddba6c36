package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the smallest plaintext accepted at signup and
// password change.
const MinPasswordLength = 6

var ErrPasswordTooShort = errors.New("password must be at least 6 characters")

// HashPassword hashes a plain text password with bcrypt; the salt is
// generated fresh on every call.
func HashPassword(plain string) (string, error) {
	if len(plain) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// helper that compares a bcrypt hash with a plaintext password.

func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
