package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"brandpanel/internal/models"
	"brandpanel/internal/repository"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type DocumentService interface {
	Upload(ctx context.Context, userID, brandID int64, file *multipart.FileHeader) (int64, error)
	List(ctx context.Context, userID, brandID int64) ([]*models.Document, error)
	Remove(ctx context.Context, userID, documentID int64) error
}

type documentService struct {
	br repository.BrandRepository
	dr repository.DocumentRepository
	r2 *R2Service
	wh WebhookService
}

func NewDocumentService(br repository.BrandRepository, dr repository.DocumentRepository, r2 *R2Service, wh WebhookService) DocumentService {
	return &documentService{
		br: br,
		dr: dr,
		r2: r2,
		wh: wh,
	}
}

var allowedDocumentTypes = map[string]struct{}{
	"pdf": {}, "doc": {}, "docx": {}, "jpeg": {}, "jpg": {}, "png": {},
}

// Upload stores a reference document for a brand and notifies the external
// retrieval index. The index notification is best-effort; the document is
// kept even when the relay fails.
func (s *documentService) Upload(ctx context.Context, userID, brandID int64, file *multipart.FileHeader) (int64, error) {
	exists, err := s.br.CheckByUserID(ctx, brandID, userID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, errors.New("brand not found")
	}

	fileContent, err := file.Open()
	if err != nil {
		return 0, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return 0, fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return 0, fmt.Errorf("unsupported file type: %w", err)
	}
	if _, ok := allowedDocumentTypes[fileType.Extension]; !ok {
		return 0, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		return 0, err
	}

	if err := s.r2.UploadToR2(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return 0, fmt.Errorf("error uploading file: %w", err)
	}

	doc := models.Document{
		BrandID:  brandID,
		FileName: file.Filename,
		FileType: fileType.MIME.Value,
		FileSize: int64(len(fileBytes)),
		FileURL:  s.r2.PublicURL(key),
	}

	docID, err := s.dr.Create(ctx, &doc)
	if err != nil {
		return 0, fmt.Errorf("error saving document: %w", err)
	}
	doc.ID = docID

	brand, err := s.br.GetByID(ctx, brandID)
	if err != nil || brand == nil {
		slog.Error("failed to load brand for document notification", "brand_id", brandID, "error", err)
		return docID, nil
	}
	if err := s.wh.NotifyDocumentAdded(ctx, brand, &doc, fileBytes); err != nil {
		slog.Error("failed to notify retrieval index of new document", "document_id", docID, "error", err)
	}

	return docID, nil
}

func (s *documentService) List(ctx context.Context, userID, brandID int64) ([]*models.Document, error) {
	exists, err := s.br.CheckByUserID(ctx, brandID, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New("brand not found")
	}

	return s.dr.ListByBrandID(ctx, brandID)
}

// Remove deletes the document row, then clears the stored object and the
// retrieval index entry best-effort.
func (s *documentService) Remove(ctx context.Context, userID, documentID int64) error {
	exists, err := s.dr.CheckByUserID(ctx, documentID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("document not found")
	}

	doc, err := s.dr.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return errors.New("document not found")
	}

	if err := s.dr.Remove(ctx, documentID); err != nil {
		return err
	}

	if key := objectKeyFromURL(doc.FileURL); key != "" {
		if err := s.r2.DeleteFromR2(ctx, key); err != nil {
			slog.Error("failed to delete stored document object", "document_id", documentID, "error", err)
		}
	}

	if err := s.wh.NotifyDocumentRemoved(ctx, doc); err != nil {
		slog.Error("failed to notify retrieval index of removed document", "document_id", documentID, "error", err)
	}

	return nil
}

func objectKeyFromURL(fileURL string) string {
	for i := len(fileURL) - 1; i >= 0; i-- {
		if fileURL[i] == '/' {
			return fileURL[i+1:]
		}
	}
	return ""
}
