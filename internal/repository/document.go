package repository

import (
	"context"

	"meetapi/internal/model"
)

// DocumentRepository defines data access for meeting documents using SQL
// queries only. No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID. Missing rows surface as
	// sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindByMeetingID returns every document of a meeting ordered by
	// uploaded_at descending.
	FindByMeetingID(ctx context.Context, meetingID string) ([]model.Document, error)

	// Delete removes a document by ID. It returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id string) error
}
