package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	config "brandpanel/configs"
	"brandpanel/internal/models"
	"brandpanel/internal/repository"
	"brandpanel/internal/transfer"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type AuthService interface {
	Register(ctx context.Context, r *transfer.RegisterRequest) (int64, error)
	Login(ctx context.Context, r *transfer.LoginRequest) (int64, error)
	GoogleAuthURL(state string) string
	GoogleLoginCallback(ctx context.Context, code string) (int64, error)
}

type authService struct {
	cfg config.Config
	u   repository.UserRepository
}

func NewAuthService(cfg config.Config, u repository.UserRepository) AuthService {
	return &authService{
		cfg: cfg,
		u:   u,
	}
}

func (s *authService) Register(ctx context.Context, r *transfer.RegisterRequest) (int64, error) {
	if err := validate.Struct(r); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	_, exists, err := s.u.GetByEmail(ctx, r.Email)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, errors.New("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	userID, err := s.u.Create(ctx, nil, &models.User{
		Email:        r.Email,
		PasswordHash: string(hash),
		Name:         r.Name,
	})
	if err != nil {
		return 0, err
	}

	return userID, nil
}

func (s *authService) Login(ctx context.Context, r *transfer.LoginRequest) (int64, error) {
	if err := validate.Struct(r); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	user, exists, err := s.u.GetByEmail(ctx, r.Email)
	if err != nil {
		return 0, err
	}
	if !exists || user.PasswordHash == "" {
		return 0, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(r.Password)); err != nil {
		return 0, errors.New("invalid email or password")
	}

	return user.ID, nil
}

func (s *authService) googleConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		RedirectURL:  s.cfg.GoogleRedirectURI,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

func (s *authService) GoogleAuthURL(state string) string {
	return s.googleConfig().AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (s *authService) GoogleLoginCallback(ctx context.Context, code string) (int64, error) {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return 0, err
	}

	oauth2Config := s.googleConfig()
	if oauth2Config.ClientID == "" || oauth2Config.ClientSecret == "" || oauth2Config.RedirectURL == "" {
		err := errors.New("OAuth2 configuration is incomplete")
		slog.Info(err.Error())
		return 0, err
	}

	token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	client := oauth2Config.Client(ctx, token)

	userInfo, err := getGoogleUserInfo(client)
	if err != nil {
		return 0, err
	}

	user, exists, err := s.u.GetByEmail(ctx, userInfo.Email)
	if err != nil {
		return 0, err
	}

	if exists {
		return user.ID, nil
	}

	userID, err := s.u.Create(ctx, nil, &models.User{
		GoogleID:       userInfo.ID,
		Email:          userInfo.Email,
		Name:           userInfo.Name,
		ProfilePicture: userInfo.Picture,
	})
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return userID, nil
}

func getGoogleUserInfo(client *http.Client) (*transfer.GoogleUserInfo, error) {
	userInfoURL := "https://www.googleapis.com/oauth2/v1/userinfo"

	response, err := client.Get(userInfoURL)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error fetching user info: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		slog.Info("Unexpected response status")
		return nil, fmt.Errorf("unexpected response status: %d", response.StatusCode)
	}

	var userInfo transfer.GoogleUserInfo
	if err := json.NewDecoder(response.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error decoding user info: %w", err)
	}

	return &userInfo, nil
}
