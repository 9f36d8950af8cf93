package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"brandpanel/internal/models"
)

type DocumentRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	ListByBrandID(ctx context.Context, brandID int64) ([]*models.Document, error)
	Create(ctx context.Context, doc *models.Document) (int64, error)
	CheckByUserID(ctx context.Context, documentID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type documentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	query := `SELECT id, brand_id, file_name, file_type, file_size, file_url, created_at FROM documents WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var doc models.Document
	err := row.Scan(&doc.ID, &doc.BrandID, &doc.FileName, &doc.FileType, &doc.FileSize, &doc.FileURL, &doc.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &doc, nil
}

func (r *documentRepository) ListByBrandID(ctx context.Context, brandID int64) ([]*models.Document, error) {
	query := `SELECT id, brand_id, file_name, file_type, file_size, file_url, created_at FROM documents WHERE brand_id = $1`
	rows, err := r.db.QueryContext(ctx, query, brandID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(&doc.ID, &doc.BrandID, &doc.FileName, &doc.FileType, &doc.FileSize, &doc.FileURL, &doc.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) (int64, error) {
	query := `
		INSERT INTO documents (brand_id, file_name, file_type, file_size, file_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, doc.BrandID, doc.FileName, doc.FileType, doc.FileSize, doc.FileURL).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *documentRepository) CheckByUserID(ctx context.Context, documentID, userID int64) (bool, error) {
	query := `
		SELECT 1 FROM documents d
		JOIN brands b ON b.id = d.brand_id
		WHERE d.id = $1 AND b.user_id = $2
	`

	var result int
	err := r.db.QueryRowContext(ctx, query, documentID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *documentRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
