package account

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword derives the stored hash for a plaintext password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("account: password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password with the stored hash.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("account: password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
