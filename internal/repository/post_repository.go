package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"brandpanel/internal/models"
	"github.com/lib/pq"
)

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListByBrandID(ctx context.Context, brandID int64) ([]*models.Post, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.Post, error)
	Create(ctx context.Context, post *models.Post) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	UpdateStatus(ctx context.Context, status string, postID int64) error
	Schedule(ctx context.Context, postID int64, scheduleAt time.Time) error
	MarkFailed(ctx context.Context, postID int64, lastError string) error
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, brand_id, status, title, short_text, long_text, caption, hashtags, body, media_url, schedule_at, last_error, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	var scheduleAt sql.NullTime
	err := row.Scan(&post.ID, &post.BrandID, &post.Status, &post.Title, &post.ShortText, &post.LongText,
		&post.Caption, pq.Array(&post.Hashtags), &post.Body, &post.MediaURL, &scheduleAt, &post.LastError,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if scheduleAt.Valid {
		post.ScheduleAt = &scheduleAt.Time
	}
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) ListByBrandID(ctx context.Context, brandID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE brand_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, brandID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// ListDue returns scheduled posts whose publish time has passed. Posts in any
// other status, including failed, are never selected here.
func (r *postRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 AND schedule_at <= $2`
	rows, err := r.db.QueryContext(ctx, query, models.PostStatusScheduled, now)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (brand_id, status, title, short_text, long_text, caption, hashtags, body, media_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, post.BrandID, post.Status, post.Title, post.ShortText,
		post.LongText, post.Caption, pq.Array(post.Hashtags), post.Body, post.MediaURL).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET title = $1,
			short_text = $2,
			long_text = $3,
			caption = $4,
			hashtags = $5,
			body = $6,
			media_url = $7,
			updated_at = $8
		WHERE id = $9
	`
	_, err := r.db.ExecContext(ctx, query, post.Title, post.ShortText, post.LongText, post.Caption,
		pq.Array(post.Hashtags), post.Body, post.MediaURL, time.Now(), post.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, status string, postID int64) error {
	query := `
		UPDATE posts
		SET status = $1,
			last_error = '',
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) Schedule(ctx context.Context, postID int64, scheduleAt time.Time) error {
	query := `
		UPDATE posts
		SET status = $1,
			schedule_at = $2,
			last_error = '',
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusScheduled, scheduleAt, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkFailed(ctx context.Context, postID int64, lastError string) error {
	query := `
		UPDATE posts
		SET status = $1,
			last_error = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, lastError, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := `
		SELECT 1 FROM posts p
		JOIN brands b ON b.id = p.brand_id
		WHERE p.id = $1 AND b.user_id = $2
	`

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
