package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// hashCost applies to newly generated hashes only; stored hashes carry
// their own cost.
const hashCost = 14

// HashPassword generates a salted bcrypt hash of the password.
// Empty passwords are rejected before hashing.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	return string(h), err
}

// ComparePasswordAndHash checks the cleartext password against a stored
// hash. A mismatch returns ErrMismatchedHashAndPassword; any other error
// means the hash itself could not be read.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
