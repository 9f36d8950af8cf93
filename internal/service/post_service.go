package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"brandpanel/internal/models"
	"brandpanel/internal/repository"
	"brandpanel/internal/transfer"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type PostService interface {
	Create(ctx context.Context, userID int64, pc *transfer.PostCreation, media *multipart.FileHeader) (int64, error)
	List(ctx context.Context, userID, brandID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Update(ctx context.Context, userID int64, pu *transfer.PostUpdate) error
	Schedule(ctx context.Context, userID, postID int64, scheduleAt string) error
	Approve(ctx context.Context, userID, postID int64) error
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	pr repository.PostRepository
	br repository.BrandRepository
	r2 *R2Service
}

func NewPostService(pr repository.PostRepository, br repository.BrandRepository, r2 *R2Service) PostService {
	return &postService{
		pr: pr,
		br: br,
		r2: r2,
	}
}

var allowedMediaTypes = map[string]struct{}{
	"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
}

func (s *postService) Create(ctx context.Context, userID int64, pc *transfer.PostCreation, media *multipart.FileHeader) (int64, error) {
	if err := validate.Struct(pc); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	exists, err := s.br.CheckByUserID(ctx, pc.BrandID, userID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, errors.New("brand not found")
	}

	post := models.Post{
		BrandID:   pc.BrandID,
		Status:    models.PostStatusDraft,
		Title:     pc.Title,
		ShortText: pc.ShortText,
		LongText:  pc.LongText,
		Caption:   pc.Caption,
		Hashtags:  pc.Hashtags,
		Body:      pc.Body,
	}

	if media != nil {
		mediaURL, err := s.saveMedia(ctx, media)
		if err != nil {
			return 0, err
		}
		post.MediaURL = mediaURL
	}

	postID, err := s.pr.Create(ctx, &post)
	if err != nil {
		return 0, fmt.Errorf("error creating post: %w", err)
	}

	return postID, nil
}

func (s *postService) saveMedia(ctx context.Context, media *multipart.FileHeader) (string, error) {
	fileContent, err := media.Open()
	if err != nil {
		return "", fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return "", fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return "", fmt.Errorf("unsupported file type: %w", err)
	}
	if _, ok := allowedMediaTypes[fileType.Extension]; !ok {
		return "", fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		return "", err
	}

	if err := s.r2.UploadToR2(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return "", fmt.Errorf("error uploading file: %w", err)
	}

	return s.r2.PublicURL(key), nil
}

func (s *postService) List(ctx context.Context, userID, brandID int64) ([]*models.Post, error) {
	exists, err := s.br.CheckByUserID(ctx, brandID, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New("brand not found")
	}

	return s.pr.ListByBrandID(ctx, brandID)
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	exists, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = errors.New("post not found")
		slog.Info(err.Error())
		return nil, err
	}

	return s.pr.GetByID(ctx, postID)
}

func (s *postService) Update(ctx context.Context, userID int64, pu *transfer.PostUpdate) error {
	if err := validate.Struct(pu); err != nil {
		slog.Info(err.Error())
		return err
	}

	post, err := s.PostInfo(ctx, pu.PostID, userID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New("post not found")
	}

	post.Title = pu.Title
	post.ShortText = pu.ShortText
	post.LongText = pu.LongText
	post.Caption = pu.Caption
	post.Hashtags = pu.Hashtags
	post.Body = pu.Body

	return s.pr.Update(ctx, post)
}

// Schedule puts a post back on the dispatch loop's radar. Re-scheduling is
// also the only way a failed post gets another delivery attempt.
func (s *postService) Schedule(ctx context.Context, userID, postID int64, scheduleAt string) error {
	parsed, err := time.Parse("2006-01-02T15:04", scheduleAt)
	if err != nil {
		err = fmt.Errorf("invalid schedule time format: %w", err)
		slog.Info(err.Error())
		return err
	}

	exists, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("post not found")
	}

	return s.pr.Schedule(ctx, postID, parsed)
}

// Approve marks the post ready for immediate publishing. The handler
// enqueues the actual delivery so the HTTP response does not wait on it.
func (s *postService) Approve(ctx context.Context, userID, postID int64) error {
	exists, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("post not found")
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New("post not found")
	}
	if post.Status == models.PostStatusSent {
		return errors.New("post already sent")
	}

	return s.pr.UpdateStatus(ctx, models.PostStatusApproved, postID)
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	exists, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("post not found")
	}

	return s.pr.Remove(ctx, postID)
}
