package util

import "golang.org/x/crypto/bcrypt"

// Work factor for staff credential hashes. Raising it only affects new
// hashes; existing ones keep the cost they were created with.
const passwordHashCost = 12

// HashPassword derives the bcrypt hash stored in users.password_hash.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
