// Package otp generates and hashes the six-digit login codes emailed to the administrator.
package otp

import (
	"crypto/rand"
	"math/big"

	"github.com/jaehkim-quant/research-platform/internal/security"
)

const (
	// Digits is the length of a login code.
	Digits   = 6
	minCode  = 100000
	spanCode = 900000
)

// GenerateCode returns a code drawn uniformly from [100000, 999999] using crypto/rand.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(spanCode))
	if err != nil {
		return "", err
	}
	return big.NewInt(0).Add(n, big.NewInt(minCode)).String(), nil
}

// HashCode returns the hex SHA-256 of code, the form in which codes are stored.
func HashCode(code string) string {
	return security.HashToken(code)
}

// CodeEqual compares code against a stored hash in constant time.
func CodeEqual(code, storedHash string) bool {
	return security.TokenHashEqual(code, storedHash)
}

// ValidFormat reports whether code is exactly six ASCII digits.
func ValidFormat(code string) bool {
	if len(code) != Digits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
