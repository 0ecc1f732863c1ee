package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash of a local account password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a stored hash with a login attempt. Accounts
// provisioned through Telegram or OAuth carry no hash at all, and a password
// login against them must fail rather than reach bcrypt with an empty hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
