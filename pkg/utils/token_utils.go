package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecureToken creates a random, URL-safe hex string of 2*length
// characters, used for password-reset tokens and OAuth state parameters.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("utils.GenerateSecureToken: %w", err)
	}
	return hex.EncodeToString(b), nil
}
