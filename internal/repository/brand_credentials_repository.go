package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"brandpanel/internal/models"
)

type BrandCredentialsRepository interface {
	Get(ctx context.Context, brandID int64, provider string) (*models.BrandCredentials, error)
	ListProviders(ctx context.Context, brandID int64) ([]string, error)
	Upsert(ctx context.Context, bc *models.BrandCredentials) error
	Remove(ctx context.Context, brandID int64, provider string) error
}

type brandCredentialsRepository struct {
	db *sql.DB
}

func NewBrandCredentialsRepository(db *sql.DB) BrandCredentialsRepository {
	return &brandCredentialsRepository{db: db}
}

func (r *brandCredentialsRepository) Get(ctx context.Context, brandID int64, provider string) (*models.BrandCredentials, error) {
	query := `SELECT brand_id, provider, credentials, updated_at FROM brand_credentials WHERE brand_id = $1 AND provider = $2`
	row := r.db.QueryRowContext(ctx, query, brandID, provider)

	var bc models.BrandCredentials
	err := row.Scan(&bc.BrandID, &bc.Provider, &bc.Credentials, &bc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &bc, nil
}

func (r *brandCredentialsRepository) ListProviders(ctx context.Context, brandID int64) ([]string, error) {
	query := `SELECT provider FROM brand_credentials WHERE brand_id = $1 ORDER BY provider`
	rows, err := r.db.QueryContext(ctx, query, brandID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var providers []string
	for rows.Next() {
		var provider string
		if err := rows.Scan(&provider); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		providers = append(providers, provider)
	}
	return providers, nil
}

func (r *brandCredentialsRepository) Upsert(ctx context.Context, bc *models.BrandCredentials) error {
	query := `
		INSERT INTO brand_credentials (brand_id, provider, credentials, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (brand_id, provider)
		DO UPDATE SET credentials = EXCLUDED.credentials, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, bc.BrandID, bc.Provider, bc.Credentials, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *brandCredentialsRepository) Remove(ctx context.Context, brandID int64, provider string) error {
	query := `DELETE FROM brand_credentials WHERE brand_id = $1 AND provider = $2`
	_, err := r.db.ExecContext(ctx, query, brandID, provider)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
