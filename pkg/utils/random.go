package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateRandomKey returns length random bytes as URL-safe base64, used for
// OAuth state values.
func GenerateRandomKey(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(b), nil
}
