package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppKeys_AliasResolution(t *testing.T) {
	tests := []struct {
		name       string
		creds      Credentials
		wantID     string
		wantSecret string
		wantOK     bool
	}{
		{
			name:       "canonical names",
			creds:      Credentials{"app_id": "1", "app_secret": "s"},
			wantID:     "1",
			wantSecret: "s",
			wantOK:     true,
		},
		{
			name:       "camel case",
			creds:      Credentials{"appId": "1", "appSecret": "s"},
			wantID:     "1",
			wantSecret: "s",
			wantOK:     true,
		},
		{
			name:       "oauth client names",
			creds:      Credentials{"client_id": "1", "client_secret": "s"},
			wantID:     "1",
			wantSecret: "s",
			wantOK:     true,
		},
		{
			name:       "mixed aliases",
			creds:      Credentials{"clientId": "1", "app_secret": "s"},
			wantID:     "1",
			wantSecret: "s",
			wantOK:     true,
		},
		{
			name:       "canonical wins over alias",
			creds:      Credentials{"app_id": "1", "client_id": "2", "app_secret": "s"},
			wantID:     "1",
			wantSecret: "s",
			wantOK:     true,
		},
		{
			name:   "missing secret",
			creds:  Credentials{"app_id": "1"},
			wantID: "1",
			wantOK: false,
		},
		{
			name:       "empty value treated as missing",
			creds:      Credentials{"app_id": "", "client_id": "2", "client_secret": "s"},
			wantID:     "2",
			wantSecret: "s",
			wantOK:     true,
		},
		{
			name:   "empty map",
			creds:  Credentials{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, secret, ok := tt.creds.AppKeys()
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantSecret, secret)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestCredentialsClone(t *testing.T) {
	orig := Credentials{"app_id": "1", "access_token": "old"}
	clone := orig.Clone()

	clone["access_token"] = "new"
	clone["expires_at"] = "later"

	assert.Equal(t, "old", orig["access_token"])
	assert.NotContains(t, orig, "expires_at")
}

func TestCredentialsClone_Nil(t *testing.T) {
	var creds Credentials
	assert.Nil(t, creds.Clone())
}

func TestKnownProvider(t *testing.T) {
	for _, p := range []string{ProviderTelegram, ProviderWordpress, ProviderLinkedin, ProviderTiktok, ProviderInstagram, ProviderFacebook} {
		assert.True(t, KnownProvider(p), p)
	}
	assert.False(t, KnownProvider("myspace"))
	assert.False(t, KnownProvider(""))
}
