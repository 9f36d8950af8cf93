package service

import (
	"encoding/json"
	"time"

	"brandpanel/internal/models"
	"brandpanel/pkg/utils"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func GetExpiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

// encodeCredentials marshals a credentials map and encrypts it for storage.
func encodeCredentials(creds models.Credentials, secretKey string) (string, error) {
	raw, err := json.Marshal(creds)
	if err != nil {
		return "", err
	}
	return utils.Encrypt(raw, []byte(secretKey))
}

// decodeCredentials reverses encodeCredentials.
func decodeCredentials(blob, secretKey string) (models.Credentials, error) {
	raw, err := utils.Decrypt(blob, []byte(secretKey))
	if err != nil {
		return nil, err
	}

	var creds models.Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, err
	}
	return creds, nil
}
