package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	config "brandpanel/configs"
	"brandpanel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGlobalTokenRepo struct {
	mu     sync.Mutex
	token  string
	exists bool
	getErr error
	setErr error
}

func (f *fakeGlobalTokenRepo) Get(ctx context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.token, f.exists, nil
}

func (f *fakeGlobalTokenRepo) Set(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.token = token
	f.exists = true
	return nil
}

func (f *fakeGlobalTokenRepo) current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func newTestTokenService(graphURL string, repo *fakeGlobalTokenRepo) TokenService {
	cfg := config.Config{GraphAPIBaseURL: graphURL}
	return NewTokenService(cfg, repo)
}

func metaCreds() models.Credentials {
	return models.Credentials{
		"client_id":     "1",
		"client_secret": "s",
		"access_token":  "old",
	}
}

func TestGetGlobalToken(t *testing.T) {
	t.Run("returns stored token", func(t *testing.T) {
		repo := &fakeGlobalTokenRepo{token: "tok", exists: true}
		s := newTestTokenService("http://unused", repo)
		assert.Equal(t, "tok", s.GetGlobalToken(context.Background()))
	})

	t.Run("empty when never set", func(t *testing.T) {
		repo := &fakeGlobalTokenRepo{}
		s := newTestTokenService("http://unused", repo)
		assert.Equal(t, "", s.GetGlobalToken(context.Background()))
	})

	t.Run("storage errors are swallowed", func(t *testing.T) {
		repo := &fakeGlobalTokenRepo{getErr: errors.New("db down")}
		s := newTestTokenService("http://unused", repo)
		assert.Equal(t, "", s.GetGlobalToken(context.Background()))
	})
}

func TestSetGlobalToken_PropagatesStorageErrors(t *testing.T) {
	repo := &fakeGlobalTokenRepo{setErr: errors.New("db down")}
	s := newTestTokenService("http://unused", repo)
	assert.Error(t, s.SetGlobalToken(context.Background(), "tok"))
}

func TestRefreshToken_ExchangeSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "fb_exchange_token", q.Get("grant_type"))
		assert.Equal(t, "1", q.Get("client_id"))
		assert.Equal(t, "s", q.Get("client_secret"))
		assert.Equal(t, "global-old", q.Get("fb_exchange_token"))
		fmt.Fprint(w, `{"access_token":"global-new","token_type":"bearer","expires_in":3600}`)
	}))
	defer server.Close()

	repo := &fakeGlobalTokenRepo{token: "global-old", exists: true}
	s := newTestTokenService(server.URL, repo)

	creds := metaCreds()
	result := s.RefreshToken(context.Background(), 7, models.ProviderInstagram, creds)

	require.NotNil(t, result)
	assert.Equal(t, "global-new", result[models.CredAccessToken])
	assert.Equal(t, "global-new", repo.current())
	assert.Equal(t, int32(1), calls.Load())

	// The input map is never mutated.
	assert.Equal(t, "old", creds["access_token"])

	expiresAt, err := time.Parse(time.RFC3339, result[models.CredExpiresAt])
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)
}

func TestRefreshToken_NoCredentials(t *testing.T) {
	repo := &fakeGlobalTokenRepo{token: "global-old", exists: true}
	s := newTestTokenService("http://unused", repo)

	assert.Nil(t, s.RefreshToken(context.Background(), 7, models.ProviderInstagram, nil))
}

func TestRefreshToken_MissingAppKeys(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	repo := &fakeGlobalTokenRepo{token: "global-old", exists: true}
	s := newTestTokenService(server.URL, repo)

	creds := models.Credentials{"access_token": "old"}
	result := s.RefreshToken(context.Background(), 7, models.ProviderFacebook, creds)

	assert.Equal(t, creds, result)
	assert.Equal(t, int32(0), calls.Load())
}

func TestRefreshToken_AliasedAppKeys(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "aliased-id", q.Get("client_id"))
		assert.Equal(t, "aliased-secret", q.Get("client_secret"))
		fmt.Fprint(w, `{"access_token":"global-new","expires_in":3600}`)
	}))
	defer server.Close()

	repo := &fakeGlobalTokenRepo{token: "global-old", exists: true}
	s := newTestTokenService(server.URL, repo)

	creds := models.Credentials{"appId": "aliased-id", "app_secret": "aliased-secret"}
	result := s.RefreshToken(context.Background(), 7, models.ProviderFacebook, creds)

	require.NotNil(t, result)
	assert.Equal(t, "global-new", result[models.CredAccessToken])
	assert.Equal(t, int32(1), calls.Load())
}

func TestRefreshToken_NoGlobalToken(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	repo := &fakeGlobalTokenRepo{}
	s := newTestTokenService(server.URL, repo)

	creds := metaCreds()
	result := s.RefreshToken(context.Background(), 7, models.ProviderInstagram, creds)

	assert.Equal(t, creds, result)
	assert.Equal(t, int32(0), calls.Load())
}

func TestRefreshToken_ExchangeFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad token"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	repo := &fakeGlobalTokenRepo{token: "global-old", exists: true}
	s := newTestTokenService(server.URL, repo)

	result := s.RefreshToken(context.Background(), 7, models.ProviderInstagram, metaCreds())

	require.NotNil(t, result)
	assert.Equal(t, "global-old", result[models.CredAccessToken])
	assert.Equal(t, "global-old", repo.current())
}

func TestRefreshToken_EmptyTokenReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	repo := &fakeGlobalTokenRepo{token: "global-old", exists: true}
	s := newTestTokenService(server.URL, repo)

	creds := metaCreds()
	result := s.RefreshToken(context.Background(), 7, models.ProviderInstagram, creds)

	assert.Equal(t, creds, result)
	assert.Equal(t, "global-old", repo.current())
}

func TestRefreshToken_SingleFlightPerKey(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"access_token":"global-new","expires_in":3600}`)
	}))
	defer server.Close()

	repo := &fakeGlobalTokenRepo{token: "global-old", exists: true}
	s := newTestTokenService(server.URL, repo)

	const concurrency = 20
	results := make([]models.Credentials, concurrency)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.RefreshToken(context.Background(), 7, models.ProviderInstagram, metaCreds())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent refreshes for one key must collapse into a single exchange")
	for i, result := range results {
		require.NotNil(t, result, "caller %d", i)
		assert.Equal(t, "global-new", result[models.CredAccessToken], "caller %d", i)
	}
}

func TestRefreshToken_IndependentKeys(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		fmt.Fprint(w, `{"access_token":"global-new","expires_in":3600}`)
	}))
	defer server.Close()

	repo := &fakeGlobalTokenRepo{token: "global-old", exists: true}
	s := newTestTokenService(server.URL, repo)

	var wg sync.WaitGroup
	for _, key := range []struct {
		brandID  int64
		provider string
	}{
		{7, models.ProviderInstagram},
		{7, models.ProviderFacebook},
		{8, models.ProviderInstagram},
	} {
		wg.Add(1)
		go func(brandID int64, provider string) {
			defer wg.Done()
			result := s.RefreshToken(context.Background(), brandID, provider, metaCreds())
			assert.NotNil(t, result)
		}(key.brandID, key.provider)
	}
	wg.Wait()

	assert.Equal(t, int32(3), calls.Load(), "distinct keys must not share one exchange")
}

func TestRefreshToken_LockCleanup(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"access_token":"global-new","expires_in":3600}`)
	}))
	defer server.Close()

	repo := &fakeGlobalTokenRepo{token: "global-old", exists: true}
	s := newTestTokenService(server.URL, repo)

	s.RefreshToken(context.Background(), 7, models.ProviderInstagram, metaCreds())
	s.RefreshToken(context.Background(), 7, models.ProviderInstagram, metaCreds())

	assert.Equal(t, int32(2), calls.Load(), "a finished refresh must not leave its lock entry behind")
}

func TestRefreshToken_LockCleanupAfterFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := &fakeGlobalTokenRepo{token: "global-old", exists: true}
	s := newTestTokenService(server.URL, repo)

	s.RefreshToken(context.Background(), 7, models.ProviderInstagram, metaCreds())
	s.RefreshToken(context.Background(), 7, models.ProviderInstagram, metaCreds())

	assert.Equal(t, int32(2), calls.Load())
}
