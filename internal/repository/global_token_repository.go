package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"brandpanel/internal/models"
)

// GlobalTokenRepository persists the single shared Meta access token. The
// table holds at most one row, keyed by models.GlobalTokenID.
type GlobalTokenRepository interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, token string) error
}

type globalTokenRepository struct {
	db *sql.DB
}

func NewGlobalTokenRepository(db *sql.DB) GlobalTokenRepository {
	return &globalTokenRepository{db: db}
}

func (r *globalTokenRepository) Get(ctx context.Context) (string, bool, error) {
	var token string
	query := "SELECT token FROM global_tokens WHERE id = $1"
	err := r.db.QueryRowContext(ctx, query, models.GlobalTokenID).Scan(&token)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		slog.Info(err.Error())
		return "", false, err
	}
	return token, true, nil
}

// Set upserts the singleton row. The ON CONFLICT clause makes concurrent
// writers last-write-wins without ever leaving a partial row behind.
func (r *globalTokenRepository) Set(ctx context.Context, token string) error {
	query := `
		INSERT INTO global_tokens (id, token, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id)
		DO UPDATE SET token = EXCLUDED.token, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, models.GlobalTokenID, token, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
