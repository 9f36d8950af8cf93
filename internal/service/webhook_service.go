package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	config "brandpanel/configs"
	"brandpanel/internal/models"
	"brandpanel/internal/repository"
	"brandpanel/internal/transfer"
)

// WebhookService talks to the external workflow-automation service: it
// delivers finished posts to the publishing webhook, relays draft posts to
// the content-generation webhook, and mirrors document changes to the
// retrieval index. Calls carry large media, so the HTTP client has no
// timeout.
type WebhookService interface {
	SendToWebhook(ctx context.Context, postID int64) error
	GeneratePost(ctx context.Context, postID int64, media *multipart.FileHeader) (*models.Post, error)
	NotifyDocumentAdded(ctx context.Context, brand *models.Brand, doc *models.Document, file []byte) error
	NotifyDocumentRemoved(ctx context.Context, doc *models.Document) error
}

type webhookService struct {
	cfg    config.Config
	pr     repository.PostRepository
	br     repository.BrandRepository
	bc     repository.BrandCredentialsRepository
	ts     TokenService
	client *http.Client
}

func NewWebhookService(
	cfg config.Config,
	pr repository.PostRepository,
	br repository.BrandRepository,
	bc repository.BrandCredentialsRepository,
	ts TokenService) WebhookService {
	return &webhookService{
		cfg:    cfg,
		pr:     pr,
		br:     br,
		bc:     bc,
		ts:     ts,
		client: &http.Client{},
	}
}

// loadCredentials reads and decrypts one provider's credentials for a brand.
// Any failure is logged and reported as "not configured".
func (s *webhookService) loadCredentials(ctx context.Context, brandID int64, provider string) models.Credentials {
	row, err := s.bc.Get(ctx, brandID, provider)
	if err != nil {
		slog.Error("failed to load brand credentials", "brand_id", brandID, "provider", provider, "error", err)
		return nil
	}
	if row == nil {
		return nil
	}

	creds, err := decodeCredentials(row.Credentials, s.cfg.SecretKey)
	if err != nil {
		slog.Error("failed to decode brand credentials", "brand_id", brandID, "provider", provider, "error", err)
		return nil
	}
	return creds
}

// SendToWebhook assembles the final payload for one post and hands it to the
// publishing webhook, refreshing Meta tokens just-in-time. On success the
// post moves to sent; on failure to failed with the error recorded, and the
// error is returned so the caller can log it.
func (s *webhookService) SendToWebhook(ctx context.Context, postID int64) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("post %d not found", postID)
	}

	if post.Status != models.PostStatusApproved && post.Status != models.PostStatusScheduled {
		slog.Info("skipping delivery for post not in a publishable status", "post_id", postID, "status", post.Status)
		return nil
	}

	brand, err := s.br.GetByID(ctx, post.BrandID)
	if err != nil {
		return err
	}
	if brand == nil {
		return fmt.Errorf("brand %d not found for post %d", post.BrandID, postID)
	}

	// Refresh whichever Meta credentials the brand has configured. A refresh
	// problem degrades to whatever token is stored; it never blocks delivery.
	igCreds := s.loadCredentials(ctx, brand.ID, models.ProviderInstagram)
	if igCreds != nil {
		igCreds = s.ts.RefreshToken(ctx, brand.ID, models.ProviderInstagram, igCreds)
	}
	fbCreds := s.loadCredentials(ctx, brand.ID, models.ProviderFacebook)
	if fbCreds != nil {
		fbCreds = s.ts.RefreshToken(ctx, brand.ID, models.ProviderFacebook, fbCreds)
	}

	body, contentType, err := s.buildPublishPayload(ctx, brand, post, igCreds, fbCreds)
	if err != nil {
		s.markFailed(ctx, postID, err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.Webhooks.PublishURL, body)
	if err != nil {
		s.markFailed(ctx, postID, err)
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		err = fmt.Errorf("HTTP request error: %w", err)
		s.markFailed(ctx, postID, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		err = fmt.Errorf("unexpected status code from publish webhook: %d (%s)", resp.StatusCode, respBody)
		s.markFailed(ctx, postID, err)
		return err
	}

	if err := s.pr.UpdateStatus(ctx, models.PostStatusSent, postID); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

func (s *webhookService) markFailed(ctx context.Context, postID int64, cause error) {
	if err := s.pr.MarkFailed(ctx, postID, cause.Error()); err != nil {
		slog.Error("failed to record delivery failure", "post_id", postID, "error", err)
	}
}

func (s *webhookService) buildPublishPayload(ctx context.Context, brand *models.Brand, post *models.Post, igCreds, fbCreds models.Credentials) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"brand_id":          strconv.FormatInt(brand.ID, 10),
		"brand_name":        brand.Name,
		"brand_description": brand.Description,
		"post_id":           strconv.FormatInt(post.ID, 10),
		"title":             post.Title,
		"short_text":        post.ShortText,
		"long_text":         post.LongText,
		"caption":           post.Caption,
		"hashtags":          strings.Join(post.Hashtags, " "),
		"body":              post.Body,
		"media_url":         post.MediaURL,
		"global_token":      s.ts.GetGlobalToken(ctx),
	}

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if err := writeCredentialsField(w, "instagram_credentials", igCreds); err != nil {
		return nil, "", err
	}
	if err := writeCredentialsField(w, "facebook_credentials", fbCreds); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeCredentialsField(w *multipart.Writer, name string, creds models.Credentials) error {
	if creds == nil {
		return nil
	}
	raw, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return w.WriteField(name, string(raw))
}

// GeneratePost relays a draft post and optional media to the
// content-generation webhook and applies the returned fields to the post.
func (s *webhookService) GeneratePost(ctx context.Context, postID int64, media *multipart.FileHeader) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("post %d not found", postID)
	}

	brand, err := s.br.GetByID(ctx, post.BrandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, fmt.Errorf("brand %d not found for post %d", post.BrandID, postID)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"brand_id":          strconv.FormatInt(brand.ID, 10),
		"brand_name":        brand.Name,
		"brand_description": brand.Description,
		"post_id":           strconv.FormatInt(post.ID, 10),
		"title":             post.Title,
		"caption":           post.Caption,
		"body":              post.Body,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, err
		}
	}

	if media != nil {
		file, err := media.Open()
		if err != nil {
			return nil, fmt.Errorf("error opening media file: %w", err)
		}
		defer file.Close()

		part, err := w.CreateFormFile("media", media.Filename)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("error streaming media file: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.Webhooks.GenerateURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code from generation webhook: %d (%s)", resp.StatusCode, respBody)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	result, err := decodeGenerationResult(respBody)
	if err != nil {
		return nil, err
	}

	applyGenerationResult(post, result)
	if err := s.pr.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("error saving generated post: %w", err)
	}

	return post, nil
}

// decodeGenerationResult accepts either a bare JSON object or a one-element
// array wrapping it, which is how the workflow tool responds depending on the
// flow's last node.
func decodeGenerationResult(data []byte) (*transfer.GenerationResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var results []transfer.GenerationResult
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return nil, fmt.Errorf("error parsing generation response: %w", err)
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("generation webhook returned an empty array")
		}
		return &results[0], nil
	}

	var result transfer.GenerationResult
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, fmt.Errorf("error parsing generation response: %w", err)
	}
	return &result, nil
}

func applyGenerationResult(post *models.Post, result *transfer.GenerationResult) {
	post.Title = result.Title
	post.ShortText = result.ShortText
	post.LongText = result.LongText
	post.Caption = result.Caption
	post.Hashtags = result.Hashtags
	if result.Image != "" {
		post.MediaURL = result.Image
	}
}

// NotifyDocumentAdded pushes an uploaded document to the retrieval index.
func (s *webhookService) NotifyDocumentAdded(ctx context.Context, brand *models.Brand, doc *models.Document, file []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"brand_id":    strconv.FormatInt(brand.ID, 10),
		"brand_name":  brand.Name,
		"document_id": strconv.FormatInt(doc.ID, 10),
		"file_name":   doc.FileName,
		"file_url":    doc.FileURL,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return err
		}
	}

	part, err := w.CreateFormFile("file", doc.FileName)
	if err != nil {
		return err
	}
	if _, err := part.Write(file); err != nil {
		return err
	}

	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.Webhooks.DocumentIngestURL, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code from ingest webhook: %d (%s)", resp.StatusCode, respBody)
	}
	return nil
}

// NotifyDocumentRemoved tells the retrieval index to drop a document.
func (s *webhookService) NotifyDocumentRemoved(ctx context.Context, doc *models.Document) error {
	payload := map[string]interface{}{
		"document_id": doc.ID,
		"brand_id":    doc.BrandID,
		"file_name":   doc.FileName,
		"file_url":    doc.FileURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.Webhooks.DocumentDeleteURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code from delete webhook: %d (%s)", resp.StatusCode, respBody)
	}
	return nil
}
