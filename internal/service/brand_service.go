package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	config "brandpanel/configs"
	"brandpanel/internal/models"
	"brandpanel/internal/repository"
	"brandpanel/internal/transfer"
)

type BrandService interface {
	Create(ctx context.Context, userID int64, bc *transfer.BrandCreation) (int64, error)
	List(ctx context.Context, userID int64) ([]*models.Brand, error)
	BrandInfo(ctx context.Context, brandID, userID int64) (*models.Brand, error)
	Update(ctx context.Context, userID, brandID int64, bc *transfer.BrandCreation) error
	Remove(ctx context.Context, userID, brandID int64) error
	SetCredentials(ctx context.Context, userID, brandID int64, provider string, creds models.Credentials) error
	RemoveCredentials(ctx context.Context, userID, brandID int64, provider string) error
	ListProviders(ctx context.Context, userID, brandID int64) ([]string, error)
}

type brandService struct {
	cfg config.Config
	br  repository.BrandRepository
	bc  repository.BrandCredentialsRepository
}

func NewBrandService(cfg config.Config, br repository.BrandRepository, bc repository.BrandCredentialsRepository) BrandService {
	return &brandService{
		cfg: cfg,
		br:  br,
		bc:  bc,
	}
}

func (s *brandService) Create(ctx context.Context, userID int64, bc *transfer.BrandCreation) (int64, error) {
	if err := validate.Struct(bc); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	brand := models.Brand{
		UserID:      userID,
		Name:        bc.Name,
		Description: bc.Description,
	}

	brandID, err := s.br.Create(ctx, &brand)
	if err != nil {
		return 0, fmt.Errorf("error creating brand: %w", err)
	}

	return brandID, nil
}

func (s *brandService) List(ctx context.Context, userID int64) ([]*models.Brand, error) {
	return s.br.ListByUserID(ctx, userID)
}

func (s *brandService) BrandInfo(ctx context.Context, brandID, userID int64) (*models.Brand, error) {
	exists, err := s.br.CheckByUserID(ctx, brandID, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = errors.New("brand not found")
		slog.Info(err.Error())
		return nil, err
	}

	return s.br.GetByID(ctx, brandID)
}

func (s *brandService) Update(ctx context.Context, userID, brandID int64, bc *transfer.BrandCreation) error {
	if err := validate.Struct(bc); err != nil {
		slog.Info(err.Error())
		return err
	}

	exists, err := s.br.CheckByUserID(ctx, brandID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("brand not found")
	}

	brand := models.Brand{
		ID:          brandID,
		Name:        bc.Name,
		Description: bc.Description,
	}
	return s.br.Update(ctx, &brand)
}

func (s *brandService) Remove(ctx context.Context, userID, brandID int64) error {
	exists, err := s.br.CheckByUserID(ctx, brandID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("brand not found")
	}

	return s.br.Remove(ctx, brandID)
}

// SetCredentials stores one provider's opaque credential map for a brand,
// encrypted at rest.
func (s *brandService) SetCredentials(ctx context.Context, userID, brandID int64, provider string, creds models.Credentials) error {
	if !models.KnownProvider(provider) {
		return fmt.Errorf("unknown provider %q", provider)
	}
	if len(creds) == 0 {
		return errors.New("credentials cannot be empty")
	}

	exists, err := s.br.CheckByUserID(ctx, brandID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("brand not found")
	}

	blob, err := encodeCredentials(creds, s.cfg.SecretKey)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return s.bc.Upsert(ctx, &models.BrandCredentials{
		BrandID:     brandID,
		Provider:    provider,
		Credentials: blob,
	})
}

func (s *brandService) RemoveCredentials(ctx context.Context, userID, brandID int64, provider string) error {
	exists, err := s.br.CheckByUserID(ctx, brandID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("brand not found")
	}

	return s.bc.Remove(ctx, brandID, provider)
}

func (s *brandService) ListProviders(ctx context.Context, userID, brandID int64) ([]string, error) {
	exists, err := s.br.CheckByUserID(ctx, brandID, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New("brand not found")
	}

	return s.bc.ListProviders(ctx, brandID)
}
