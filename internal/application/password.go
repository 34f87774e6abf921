package application

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	passwordLength   = 8
)

// GeneratePassword returns a fixed-length password drawn uniformly from the
// alphanumeric alphabet using a cryptographically secure source. A record's
// password is generated at most once: callers only invoke this when neither
// the view nor the store carries one.
func GeneratePassword() (string, error) {
	max := big.NewInt(int64(len(passwordAlphabet)))
	buf := make([]byte, passwordLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
