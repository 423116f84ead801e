package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted bcrypt hash from the plaintext password.
// bcrypt embeds a fresh random salt per call, so hashing the same password
// twice yields different stored values.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword returns nil iff the plaintext matches the stored hash.
// Comparison is constant-time; a malformed hash yields an error rather than
// a panic.
func CheckPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
