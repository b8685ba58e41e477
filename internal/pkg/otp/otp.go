package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Code generates a 6-digit numeric code drawn uniformly from
// [100000, 999999].
func Code() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", 100000+n.Int64()), nil
}
