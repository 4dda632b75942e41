package postgres

import (
	"context"
	"database/sql"

	"meetapi/internal/model"
	"meetapi/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, meeting_id, file_name, original_file_name, storage_path, file_extension, content_type, file_size, uploaded_at`

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const query = `
		INSERT INTO meeting_documents (id, meeting_id, file_name, original_file_name, storage_path, file_extension, content_type, file_size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + documentColumns
	row := q(ctx, r.db).QueryRowContext(ctx, query,
		doc.ID,
		doc.MeetingID,
		doc.FileName,
		doc.OriginalFileName,
		doc.StoragePath,
		doc.FileExtension,
		doc.ContentType,
		doc.FileSize,
		doc.UploadedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM meeting_documents WHERE id = $1`
	return scanDocument(q(ctx, r.db).QueryRowContext(ctx, query, id))
}

// FindByMeetingID returns a meeting's documents, newest upload first.
func (r *DocumentPostgres) FindByMeetingID(ctx context.Context, meetingID string) ([]model.Document, error) {
	const query = `
		SELECT ` + documentColumns + `
		FROM meeting_documents
		WHERE meeting_id = $1
		ORDER BY uploaded_at DESC, id DESC
	`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

// Delete removes a document by ID. It does not return an error if the row
// does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM meeting_documents WHERE id = $1`
	res, err := q(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

func scanDocument(s scanner) (*model.Document, error) {
	var d model.Document
	if err := s.Scan(
		&d.ID,
		&d.MeetingID,
		&d.FileName,
		&d.OriginalFileName,
		&d.StoragePath,
		&d.FileExtension,
		&d.ContentType,
		&d.FileSize,
		&d.UploadedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}
