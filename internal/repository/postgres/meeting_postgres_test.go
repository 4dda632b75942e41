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
	"meetapi/internal/repository"
)

var meetingCols = []string{"id", "user_id", "title", "description", "start_date", "end_date", "created_at", "updated_at", "is_cancelled", "cancelled_at"}

var documentCols = []string{"id", "meeting_id", "file_name", "original_file_name", "storage_path", "file_extension", "content_type", "file_size", "uploaded_at"}

func meetingRow(id, userID string, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(meetingCols).
		AddRow(id, userID, "Planning", "notes", now.Add(time.Hour), now.Add(2*time.Hour), now, nil, false, nil)
}

func TestMeetingPostgres_Create(t *testing.T) {
	db, mock := newMockDB(t)

	repo := NewMeetingPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	m := &model.Meeting{
		ID:        "meeting-1",
		UserID:    "user-1",
		Title:     "Planning",
		StartDate: now.Add(time.Hour),
		EndDate:   now.Add(2 * time.Hour),
		CreatedAt: now,
	}

	mock.ExpectQuery("INSERT INTO meetings").
		WithArgs(m.ID, m.UserID, m.Title, sqlmock.AnyArg(), m.StartDate, m.EndDate, m.CreatedAt, false).
		WillReturnRows(meetingRow(m.ID, m.UserID, now))

	result, err := repo.Create(ctx, m)

	assert.NoError(t, err)
	assert.Equal(t, m.ID, result.ID)
	assert.NotNil(t, result.Documents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingPostgres_FindByID(t *testing.T) {
	db, mock := newMockDB(t)

	repo := NewMeetingPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found with documents", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM meetings WHERE id =").
			WithArgs("meeting-1").
			WillReturnRows(meetingRow("meeting-1", "user-1", now))
		mock.ExpectQuery("SELECT (.+) FROM meeting_documents").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(documentCols).
				AddRow("doc-1", "meeting-1", "gen.pdf", "agenda.pdf", "meeting-documents/meeting-1/gen.pdf", ".pdf", "application/pdf", 9, now))

		m, err := repo.FindByID(ctx, "meeting-1")

		assert.NoError(t, err)
		require.Len(t, m.Documents, 1)
		assert.Equal(t, "doc-1", m.Documents[0].ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM meetings WHERE id =").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		m, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, m)
	})
}

func TestMeetingPostgres_Update(t *testing.T) {
	db, mock := newMockDB(t)

	repo := NewMeetingPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	m := &model.Meeting{
		ID:        "meeting-1",
		Title:     "Planning v2",
		StartDate: now.Add(time.Hour),
		EndDate:   now.Add(2 * time.Hour),
		UpdatedAt: &now,
	}

	t.Run("writes only field columns behind the cancellation guard", func(t *testing.T) {
		mock.ExpectExec(`UPDATE meetings\s+SET title = \$2, description = \$3, start_date = \$4, end_date = \$5, updated_at = \$6\s+WHERE id = \$1 AND is_cancelled = FALSE`).
			WithArgs(m.ID, m.Title, sqlmock.AnyArg(), m.StartDate, m.EndDate, m.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(ctx, m))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrently cancelled row surfaces as ErrNoRows", func(t *testing.T) {
		mock.ExpectExec("UPDATE meetings").
			WithArgs(m.ID, m.Title, sqlmock.AnyArg(), m.StartDate, m.EndDate, m.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(ctx, m), sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMeetingPostgres_Cancel(t *testing.T) {
	db, mock := newMockDB(t)

	repo := NewMeetingPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("transitions a live row", func(t *testing.T) {
		mock.ExpectExec(`UPDATE meetings\s+SET is_cancelled = TRUE, cancelled_at = \$2, updated_at = \$2\s+WHERE id = \$1 AND is_cancelled = FALSE`).
			WithArgs("meeting-1", now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Cancel(ctx, "meeting-1", now)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already-cancelled row reports false", func(t *testing.T) {
		mock.ExpectExec("UPDATE meetings").
			WithArgs("meeting-1", now).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Cancel(ctx, "meeting-1", now)

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMeetingPostgres_FindFiltered(t *testing.T) {
	db, mock := newMockDB(t)

	repo := NewMeetingPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("count runs before the page query", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM meetings WHERE user_id =").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
		mock.ExpectQuery("SELECT (.+) FROM meetings WHERE user_id = (.+) ORDER BY start_date ASC LIMIT").
			WithArgs("user-1", 10, 10).
			WillReturnRows(meetingRow("meeting-1", "user-1", now))
		mock.ExpectQuery("SELECT (.+) FROM meeting_documents").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(documentCols))

		page, err := repo.FindFiltered(ctx, "user-1", repository.MeetingFilter{PageNumber: 2, PageSize: 10})

		assert.NoError(t, err)
		assert.Equal(t, 25, page.TotalCount)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 2, page.PageNumber)
		assert.Len(t, page.Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("out-of-range pagination is clamped", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM meetings").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("SELECT (.+) FROM meetings WHERE user_id = (.+) LIMIT").
			WithArgs("user-1", 10, 0).
			WillReturnRows(sqlmock.NewRows(meetingCols))

		page, err := repo.FindFiltered(ctx, "user-1", repository.MeetingFilter{PageNumber: -3, PageSize: 500})

		assert.NoError(t, err)
		assert.Equal(t, 1, page.PageNumber)
		assert.Equal(t, 10, page.PageSize)
		assert.Empty(t, page.Items)
	})
}

func TestMeetingPostgres_FindCancelledBefore(t *testing.T) {
	db, mock := newMockDB(t)

	repo := NewMeetingPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()
	cutoff := now.Add(-7 * 24 * time.Hour)

	cancelled := sqlmock.NewRows(meetingCols).
		AddRow("meeting-1", "user-1", "Old", nil, now.Add(-72*time.Hour), now.Add(-71*time.Hour), now.Add(-100*time.Hour), nil, true, cutoff.Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM meetings WHERE is_cancelled = TRUE AND cancelled_at <").
		WithArgs(cutoff).
		WillReturnRows(cancelled)
	mock.ExpectQuery("SELECT (.+) FROM meeting_documents").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(documentCols).
			AddRow("doc-1", "meeting-1", "gen.pdf", "agenda.pdf", "meeting-documents/meeting-1/gen.pdf", ".pdf", "application/pdf", 9, now))

	meetings, err := repo.FindCancelledBefore(ctx, cutoff)

	assert.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Len(t, meetings[0].Documents, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingPostgres_DeleteBatch(t *testing.T) {
	db, mock := newMockDB(t)

	repo := NewMeetingPostgres(db)
	ctx := context.Background()

	t.Run("documents first, then meetings", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM meeting_documents WHERE meeting_id = ANY").
			WithArgs(sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM meetings WHERE id = ANY").
			WithArgs(sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 2))

		assert.NoError(t, repo.DeleteBatch(ctx, []string{"m1", "m2"}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.DeleteBatch(ctx, nil))
	})
}

func TestBuildMeetingPredicates(t *testing.T) {
	now := time.Now().UTC()
	from := now.Add(-time.Hour)
	cancelled := true

	tests := []struct {
		name      string
		filter    repository.MeetingFilter
		wantWhere string
		wantArgs  int
	}{
		{
			name:      "owner only",
			filter:    repository.MeetingFilter{},
			wantWhere: "user_id = $1",
			wantArgs:  1,
		},
		{
			name:      "upcoming",
			filter:    repository.MeetingFilter{Status: repository.StatusUpcoming},
			wantWhere: "user_id = $1 AND start_date >= $2 AND is_cancelled = FALSE",
			wantArgs:  2,
		},
		{
			name:      "active matches the upcoming predicate",
			filter:    repository.MeetingFilter{Status: repository.StatusActive},
			wantWhere: "user_id = $1 AND start_date >= $2 AND is_cancelled = FALSE",
			wantArgs:  2,
		},
		{
			name:      "past",
			filter:    repository.MeetingFilter{Status: repository.StatusPast},
			wantWhere: "user_id = $1 AND end_date < $2 AND is_cancelled = FALSE",
			wantArgs:  2,
		},
		{
			name:      "cancelled",
			filter:    repository.MeetingFilter{Status: repository.StatusCancelled},
			wantWhere: "user_id = $1 AND is_cancelled = TRUE",
			wantArgs:  1,
		},
		{
			name:      "date bound and explicit is_cancelled combine",
			filter:    repository.MeetingFilter{StartDateFrom: &from, IsCancelled: &cancelled},
			wantWhere: "user_id = $1 AND start_date >= $2 AND is_cancelled = $3",
			wantArgs:  3,
		},
		{
			name:      "search uses one placeholder for both columns",
			filter:    repository.MeetingFilter{SearchTerm: " review "},
			wantWhere: "user_id = $1 AND (title ILIKE $2 OR description ILIKE $2)",
			wantArgs:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildMeetingPredicates("user-1", tt.filter, now)
			assert.Equal(t, tt.wantWhere, where)
			assert.Len(t, args, tt.wantArgs)
		})
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		orderBy    string
		descending bool
		want       string
	}{
		{"title", false, "title ASC"},
		{"enddate", true, "end_date DESC"},
		{"createdat", false, "created_at ASC"},
		{"startdate", true, "start_date DESC"},
		{"", false, "start_date ASC"},
		{"bogus; DROP TABLE meetings", false, "start_date ASC"},
	}

	for _, tt := range tests {
		got := orderClause(repository.MeetingFilter{OrderBy: tt.orderBy, Descending: tt.descending})
		assert.Equal(t, tt.want, got)
	}
}
