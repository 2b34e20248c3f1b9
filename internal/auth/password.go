package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when the user does not exist so that
// unknown usernames take as long as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("armory-timing-equalizer"), bcrypt.DefaultCost)

// CheckPasswordTimingSafe burns one bcrypt comparison. Call it when the user
// lookup failed.
func CheckPasswordTimingSafe(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
