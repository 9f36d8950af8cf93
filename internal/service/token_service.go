package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	config "brandpanel/configs"
	"brandpanel/internal/models"
	"brandpanel/internal/repository"
)

// TokenService owns the shared long-lived Meta access token and refreshes it
// on behalf of brands. Every brand and both Meta providers reuse the one
// global token; a refresh exchanges the stored token for a new long-lived one
// via the Graph API and persists the result for everyone.
type TokenService interface {
	GetGlobalToken(ctx context.Context) string
	SetGlobalToken(ctx context.Context, token string) error
	RefreshToken(ctx context.Context, brandID int64, provider string, creds models.Credentials) models.Credentials
}

type tokenService struct {
	cfg    config.Config
	gt     repository.GlobalTokenRepository
	client *http.Client

	mu       sync.Mutex
	inflight map[string]chan struct{}
}

func NewTokenService(cfg config.Config, gt repository.GlobalTokenRepository) TokenService {
	return &tokenService{
		cfg:      cfg,
		gt:       gt,
		client:   &http.Client{Timeout: 10 * time.Second},
		inflight: make(map[string]chan struct{}),
	}
}

// GetGlobalToken returns the current shared token, or "" when none has been
// stored yet. Storage errors are logged and reported as "no token" so callers
// degrade instead of failing.
func (s *tokenService) GetGlobalToken(ctx context.Context) string {
	token, exists, err := s.gt.Get(ctx)
	if err != nil {
		slog.Error("failed to read global token", "error", err)
		return ""
	}
	if !exists {
		return ""
	}
	return token
}

func (s *tokenService) SetGlobalToken(ctx context.Context, token string) error {
	return s.gt.Set(ctx, token)
}

func refreshKey(brandID int64, provider string) string {
	return fmt.Sprintf("%d:%s", brandID, provider)
}

// RefreshToken produces up-to-date credentials for one brand and provider.
// Concurrent calls for the same (brand, provider) collapse into a single
// Graph API exchange: the first caller performs it, the rest wait for its
// completion and pick up the stored result. Stamped tokens go onto a copy of
// the input map; brand storage is never written here. A nil return means the
// brand had no credentials for the provider at all; exchange failures
// degrade to the last known global token instead of erroring.
func (s *tokenService) RefreshToken(ctx context.Context, brandID int64, provider string, creds models.Credentials) models.Credentials {
	if creds == nil {
		return nil
	}

	appID, appSecret, ok := creds.AppKeys()
	if !ok {
		slog.Warn("missing app id or secret, skipping token refresh", "brand_id", brandID, "provider", provider)
		return creds
	}

	key := refreshKey(brandID, provider)

	s.mu.Lock()
	if done, exists := s.inflight[key]; exists {
		s.mu.Unlock()
		// Another refresh for this key is in flight. Wait it out and use
		// whatever token it left in the store.
		<-done
		out := creds.Clone()
		if token := s.GetGlobalToken(ctx); token != "" {
			out[models.CredAccessToken] = token
		}
		return out
	}
	done := make(chan struct{})
	s.inflight[key] = done
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
		close(done)
	}()

	globalToken := s.GetGlobalToken(ctx)
	if globalToken == "" {
		slog.Warn("no global token stored, skipping token refresh", "brand_id", brandID, "provider", provider)
		return creds
	}

	accessToken, expiresIn, err := s.exchangeToken(ctx, appID, appSecret, globalToken)
	if err != nil {
		slog.Error("token exchange failed", "brand_id", brandID, "provider", provider, "error", err)
		out := creds.Clone()
		if token := s.GetGlobalToken(ctx); token != "" {
			out[models.CredAccessToken] = token
		}
		return out
	}

	if accessToken == "" {
		slog.Warn("token exchange returned no access token", "brand_id", brandID, "provider", provider)
		return creds
	}

	if err := s.SetGlobalToken(ctx, accessToken); err != nil {
		slog.Error("failed to persist refreshed global token", "error", err)
	}

	out := creds.Clone()
	if expiresIn > 0 {
		out[models.CredExpiresAt] = GetExpiresAt(expiresIn).Format(time.RFC3339)
	}
	out[models.CredAccessToken] = accessToken
	return out
}

// exchangeToken calls the Graph API long-lived token exchange.
func (s *tokenService) exchangeToken(ctx context.Context, appID, appSecret, token string) (string, int, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", appID)
	params.Set("client_secret", appSecret)
	params.Set("fb_exchange_token", token)

	reqURL := fmt.Sprintf("%s/oauth/access_token?%s", s.cfg.GraphAPIBaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("error response from Graph API: %s (status code: %d)", body, resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, fmt.Errorf("failed to decode token response: %w", err)
	}

	return result.AccessToken, result.ExpiresIn, nil
}
