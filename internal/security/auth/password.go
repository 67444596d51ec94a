package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted bcrypt digest. The salt is generated per
// call, so two hashes of the same password differ.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a candidate password against a stored digest.
// A malformed digest counts as a mismatch rather than an error.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
