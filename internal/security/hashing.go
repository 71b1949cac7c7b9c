package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatchedPassword means the admin password step of login failed.
var ErrMismatchedPassword = bcrypt.ErrMismatchedHashAndPassword

// Hasher checks the single admin password against ADMIN_PASSWORD_HASH before an OTP
// is mailed. cmd/hashpassword uses the same Hasher to produce that hash, so the cost
// configured there (BCRYPT_COST) is the cost login verifies against.
type Hasher struct {
	Cost int
}

// NewHasher clamps cost into bcrypt's range; zero or negative selects bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns the value to store in ADMIN_PASSWORD_HASH.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", fmt.Errorf("security: hash admin password: %w", err)
	}
	return string(b), nil
}

// Compare returns nil when password matches the configured admin hash.
// A wrong password yields ErrMismatchedPassword; a malformed hash yields bcrypt's format error.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}
