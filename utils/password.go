package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword returns the bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares the bcrypt hashed password with its possible plaintext equivalent.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
