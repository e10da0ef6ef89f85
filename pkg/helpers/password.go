package helpers

import "golang.org/x/crypto/bcrypt"

// DefaultPasswordCost is the bcrypt work factor used when none is configured.
const DefaultPasswordCost = 10

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
