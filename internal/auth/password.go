package auth

import "golang.org/x/crypto/bcrypt"

// dummyHash is a bcrypt hash of a throwaway value. Login compares against
// it when the user does not exist so that absent and wrong-password cases
// take comparable time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword returns a bcrypt hash for the provided plaintext.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// BurnPassword performs a bcrypt comparison against a fixed hash and
// always fails. Used to equalize login timing when no user was found.
func BurnPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
