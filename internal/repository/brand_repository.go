package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"brandpanel/internal/models"
)

type BrandRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Brand, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Brand, error)
	Create(ctx context.Context, brand *models.Brand) (int64, error)
	Update(ctx context.Context, brand *models.Brand) error
	CheckByUserID(ctx context.Context, brandID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type brandRepository struct {
	db *sql.DB
}

func NewBrandRepository(db *sql.DB) BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) GetByID(ctx context.Context, id int64) (*models.Brand, error) {
	query := `SELECT id, user_id, name, description, created_at, updated_at FROM brands WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var brand models.Brand
	err := row.Scan(&brand.ID, &brand.UserID, &brand.Name, &brand.Description, &brand.CreatedAt, &brand.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &brand, nil
}

func (r *brandRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Brand, error) {
	query := `SELECT id, user_id, name, description, created_at, updated_at FROM brands WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var brands []*models.Brand
	for rows.Next() {
		var brand models.Brand
		err := rows.Scan(&brand.ID, &brand.UserID, &brand.Name, &brand.Description, &brand.CreatedAt, &brand.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		brands = append(brands, &brand)
	}
	return brands, nil
}

func (r *brandRepository) Create(ctx context.Context, brand *models.Brand) (int64, error) {
	query := `
		INSERT INTO brands (user_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, brand.UserID, brand.Name, brand.Description).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *brandRepository) Update(ctx context.Context, brand *models.Brand) error {
	query := `
		UPDATE brands
		SET name = $1,
			description = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, brand.Name, brand.Description, time.Now(), brand.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *brandRepository) CheckByUserID(ctx context.Context, brandID, userID int64) (bool, error) {
	query := "SELECT 1 FROM brands WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, brandID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *brandRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM brands WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
