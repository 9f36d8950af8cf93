package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Webhooks struct {
	PublishURL        string
	GenerateURL       string
	DocumentIngestURL string
	DocumentDeleteURL string
}

type Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	GraphAPIBaseURL    string
	PostgresURI        string
	RedisURI           string
	FrontendURL        string
	Webhooks           Webhooks
	R2                 R2
	SecretKey          string
	CookieName         string
}

func LoadConfig() *Config {
	return &Config{
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3000/login/google/callback"),
		GraphAPIBaseURL:    getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v21.0"),
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", ""),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		Webhooks: Webhooks{
			PublishURL:        getEnv("PUBLISH_WEBHOOK_URL", ""),
			GenerateURL:       getEnv("GENERATE_WEBHOOK_URL", ""),
			DocumentIngestURL: getEnv("DOCUMENT_INGEST_WEBHOOK_URL", ""),
			DocumentDeleteURL: getEnv("DOCUMENT_DELETE_WEBHOOK_URL", ""),
		},
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "brandpanel_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
