package models

const (
	ProviderTelegram  = "telegram"
	ProviderWordpress = "wordpress"
	ProviderLinkedin  = "linkedin"
	ProviderTiktok    = "tiktok"
	ProviderInstagram = "instagram"
	ProviderFacebook  = "facebook"
)

const (
	CredAccessToken = "access_token"
	CredExpiresAt   = "expires_at"
)

func KnownProvider(provider string) bool {
	switch provider {
	case ProviderTelegram, ProviderWordpress, ProviderLinkedin,
		ProviderTiktok, ProviderInstagram, ProviderFacebook:
		return true
	}
	return false
}

// Credentials is the opaque key-value blob stored per brand and provider.
// Keys are whatever the panel UI or an imported export used, so lookups for
// the Meta app id/secret accept the common spellings.
type Credentials map[string]string

func (c Credentials) Clone() Credentials {
	if c == nil {
		return nil
	}
	out := make(Credentials, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// AppKeys resolves the Meta app id and secret from the accepted field
// aliases. ok is false when either one is missing.
func (c Credentials) AppKeys() (appID, appSecret string, ok bool) {
	appID = c.first("app_id", "appId", "client_id", "clientId")
	appSecret = c.first("app_secret", "appSecret", "client_secret", "clientSecret")
	return appID, appSecret, appID != "" && appSecret != ""
}

func (c Credentials) first(keys ...string) string {
	for _, key := range keys {
		if v, exists := c[key]; exists && v != "" {
			return v
		}
	}
	return ""
}
