package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetapi/internal/model"
)

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock := newMockDB(t)

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	doc := &model.Document{
		ID:               "doc-1",
		MeetingID:        "meeting-1",
		FileName:         "gen.pdf",
		OriginalFileName: "agenda.pdf",
		StoragePath:      "meeting-documents/meeting-1/gen.pdf",
		FileExtension:    ".pdf",
		ContentType:      "application/pdf",
		FileSize:         9,
		UploadedAt:       now,
	}

	mock.ExpectQuery("INSERT INTO meeting_documents").
		WithArgs(doc.ID, doc.MeetingID, doc.FileName, doc.OriginalFileName, doc.StoragePath, doc.FileExtension, doc.ContentType, doc.FileSize, doc.UploadedAt).
		WillReturnRows(sqlmock.NewRows(documentCols).
			AddRow(doc.ID, doc.MeetingID, doc.FileName, doc.OriginalFileName, doc.StoragePath, doc.FileExtension, doc.ContentType, doc.FileSize, doc.UploadedAt))

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	assert.Equal(t, doc.StoragePath, result.StoragePath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock := newMockDB(t)

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM meeting_documents WHERE id =").
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows(documentCols).
				AddRow("doc-1", "meeting-1", "gen.pdf", "agenda.pdf", "meeting-documents/meeting-1/gen.pdf", ".pdf", "application/pdf", 9, time.Now()))

		doc, err := repo.FindByID(ctx, "doc-1")

		assert.NoError(t, err)
		assert.Equal(t, "meeting-1", doc.MeetingID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM meeting_documents WHERE id =").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_FindByMeetingID(t *testing.T) {
	db, mock := newMockDB(t)

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM meeting_documents\\s+WHERE meeting_id = (.+) ORDER BY uploaded_at DESC").
		WithArgs("meeting-1").
		WillReturnRows(sqlmock.NewRows(documentCols).
			AddRow("doc-2", "meeting-1", "b.pdf", "b.pdf", "meeting-documents/meeting-1/b.pdf", ".pdf", "application/pdf", 2, now).
			AddRow("doc-1", "meeting-1", "a.pdf", "a.pdf", "meeting-documents/meeting-1/a.pdf", ".pdf", "application/pdf", 1, now.Add(-time.Hour)))

	docs, err := repo.FindByMeetingID(ctx, "meeting-1")

	assert.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-2", docs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock := newMockDB(t)

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("deletes the row", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM meeting_documents WHERE id =").
			WithArgs("doc-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "doc-1"))
	})

	t.Run("absent row is not an error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM meeting_documents WHERE id =").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(ctx, "missing"))
	})
}
