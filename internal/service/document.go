package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"meetapi/internal/config"
	"meetapi/internal/model"
	"meetapi/internal/repository"
	"meetapi/internal/storage"
)

// Object key category for meeting attachments.
const categoryDocuments = "meeting-documents"

// UploadInput carries an incoming attachment. Content is fully buffered by
// the handler; Size must match len(Content).
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Content     []byte
}

// DownloadResult carries the streamed content of a stored document.
// The caller owns Body and must close it.
type DownloadResult struct {
	Body             io.ReadCloser
	ContentType      string
	OriginalFileName string
	Size             int64
}

// DocumentService defines the attachment use cases. All operations are scoped
// to the meeting owner.
type DocumentService interface {
	// Upload validates the file, writes the blob, then inserts the metadata
	// row in a transaction. If the row insert fails the blob is deleted so no
	// orphan can outlive the request.
	Upload(ctx context.Context, meetingID, userID string, in UploadInput) (*model.Document, error)

	// List returns the meeting's documents, newest first.
	List(ctx context.Context, meetingID, userID string) ([]model.Document, error)

	// Download streams a stored document. A row whose blob has gone missing
	// surfaces as ErrBlobMissing, distinct from ErrDocumentNotFound.
	Download(ctx context.Context, documentID, userID string) (*DownloadResult, error)

	// Delete removes the blob first, then the row. A missing blob is treated
	// as already deleted.
	Delete(ctx context.Context, documentID, userID string) error
}

type documentService struct {
	docs     repository.DocumentRepository
	meetings repository.MeetingRepository
	tx       repository.TxManager
	store    storage.Storage
	upload   config.UploadConfig
	baseURL  string
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(docs repository.DocumentRepository, meetings repository.MeetingRepository, tx repository.TxManager, store storage.Storage, upload config.UploadConfig, baseURL string) DocumentService {
	return &documentService{
		docs:     docs,
		meetings: meetings,
		tx:       tx,
		store:    store,
		upload:   upload,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (s *documentService) Upload(ctx context.Context, meetingID, userID string, in UploadInput) (*model.Document, error) {
	if _, err := s.loadMeeting(ctx, meetingID, userID); err != nil {
		return nil, err
	}
	if len(in.Content) == 0 {
		return nil, ErrEmptyFile
	}
	ext, err := validateFile(s.upload, categoryDocuments, in.FileName, in.Size)
	if err != nil {
		return nil, err
	}

	genName := uuid.New().String() + ext
	key := categoryDocuments + "/" + meetingID + "/" + genName

	var stored *model.Document
	uploaded := false
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		objInfo, err := s.store.Put(ctx, key, bytes.NewReader(in.Content), storage.PutObjectOptions{
			Size:        in.Size,
			ContentType: in.ContentType,
			Metadata: map[string]string{
				"original-filename": in.FileName,
			},
		})
		if err != nil {
			return fmt.Errorf("upload to storage: %w", err)
		}
		uploaded = true

		doc := &model.Document{
			ID:               uuid.New().String(),
			MeetingID:        meetingID,
			FileName:         genName,
			OriginalFileName: in.FileName,
			StoragePath:      objInfo.Key,
			FileExtension:    ext,
			ContentType:      in.ContentType,
			FileSize:         objInfo.Size,
			UploadedAt:       time.Now().UTC(),
		}
		stored, err = s.docs.Create(ctx, doc)
		if err != nil {
			return fmt.Errorf("save document metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		// Compensate: the row never committed, so the blob must not survive.
		if uploaded {
			if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
				logJSON("error", "compensating blob delete failed", map[string]any{
					"meeting_id": meetingID,
					"key":        key,
					"error":      delErr.Error(),
				})
			}
		}
		return nil, err
	}

	stored.FileURL = s.baseURL + "/" + stored.StoragePath
	return stored, nil
}

func (s *documentService) List(ctx context.Context, meetingID, userID string) ([]model.Document, error) {
	if _, err := s.loadMeeting(ctx, meetingID, userID); err != nil {
		return nil, err
	}
	docs, err := s.docs.FindByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	for i := range docs {
		docs[i].FileURL = s.baseURL + "/" + docs[i].StoragePath
	}
	return docs, nil
}

func (s *documentService) Download(ctx context.Context, documentID, userID string) (*DownloadResult, error) {
	doc, err := s.loadDocument(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("check blob: %w", err)
	}
	if !exists {
		return nil, ErrBlobMissing
	}

	body, info, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = info.ContentType
	}
	return &DownloadResult{
		Body:             body,
		ContentType:      contentType,
		OriginalFileName: doc.OriginalFileName,
		Size:             doc.FileSize,
	}, nil
}

func (s *documentService) Delete(ctx context.Context, documentID, userID string) error {
	doc, err := s.loadDocument(ctx, documentID, userID)
	if err != nil {
		return err
	}
	// Blob first. If this fails the row stays so the document remains
	// discoverable; the storage layer treats an absent key as success.
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	if err := s.docs.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// loadDocument fetches a document and enforces ownership through its meeting.
func (s *documentService) loadDocument(ctx context.Context, documentID, userID string) (*model.Document, error) {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	if _, err := s.loadMeeting(ctx, doc.MeetingID, userID); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) loadMeeting(ctx context.Context, meetingID, userID string) (*model.Meeting, error) {
	m, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("find meeting: %w", err)
	}
	if !m.OwnedBy(userID) {
		return nil, ErrForbidden
	}
	return m, nil
}
