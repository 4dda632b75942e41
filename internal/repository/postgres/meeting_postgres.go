package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"meetapi/internal/model"
	"meetapi/internal/repository"
)

// MeetingPostgres is a PostgreSQL implementation of repository.MeetingRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type MeetingPostgres struct {
	db *sql.DB
}

// NewMeetingPostgres creates a new MeetingPostgres repository.
func NewMeetingPostgres(db *sql.DB) *MeetingPostgres {
	return &MeetingPostgres{db: db}
}

var _ repository.MeetingRepository = (*MeetingPostgres)(nil)

const meetingColumns = `id, user_id, title, description, start_date, end_date, created_at, updated_at, is_cancelled, cancelled_at`

// Create inserts a new meeting row and returns the stored record.
func (r *MeetingPostgres) Create(ctx context.Context, m *model.Meeting) (*model.Meeting, error) {
	const query = `
		INSERT INTO meetings (id, user_id, title, description, start_date, end_date, created_at, is_cancelled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + meetingColumns
	row := q(ctx, r.db).QueryRowContext(ctx, query,
		m.ID,
		m.UserID,
		m.Title,
		nullString(m.Description),
		m.StartDate,
		m.EndDate,
		m.CreatedAt,
		m.IsCancelled,
	)
	out, err := scanMeeting(row)
	if err != nil {
		return nil, err
	}
	out.Documents = []model.Document{}
	return out, nil
}

// FindByID fetches a single meeting and eagerly loads its documents.
func (r *MeetingPostgres) FindByID(ctx context.Context, id string) (*model.Meeting, error) {
	const query = `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`
	m, err := scanMeeting(q(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	docs, err := r.documentsFor(ctx, []string{m.ID})
	if err != nil {
		return nil, err
	}
	m.Documents = docs[m.ID]
	if m.Documents == nil {
		m.Documents = []model.Document{}
	}
	return m, nil
}

// Update persists the client-writable fields of a meeting. The statement is
// guarded on is_cancelled so a racing cancel can never be overwritten with
// stale in-memory state; losing that race surfaces as sql.ErrNoRows.
func (r *MeetingPostgres) Update(ctx context.Context, m *model.Meeting) error {
	const query = `
		UPDATE meetings
		SET title = $2, description = $3, start_date = $4, end_date = $5, updated_at = $6
		WHERE id = $1 AND is_cancelled = FALSE
	`
	res, err := q(ctx, r.db).ExecContext(ctx, query,
		m.ID,
		m.Title,
		nullString(m.Description),
		m.StartDate,
		m.EndDate,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Cancel flips is_cancelled behind an is_cancelled = FALSE guard, making the
// transition one-way at the row level. false means the row was already
// cancelled or is gone.
func (r *MeetingPostgres) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `
		UPDATE meetings
		SET is_cancelled = TRUE, cancelled_at = $2, updated_at = $2
		WHERE id = $1 AND is_cancelled = FALSE
	`
	res, err := q(ctx, r.db).ExecContext(ctx, query, id, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a meeting by ID. Document rows cascade at the schema level.
// It returns nil if the row did not exist.
func (r *MeetingPostgres) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM meetings WHERE id = $1`
	_, err := q(ctx, r.db).ExecContext(ctx, query, id)
	return err
}

// FindFiltered builds the multi-predicate query: WHERE clauses are assembled
// once and shared by the COUNT and the page SELECT so the total always
// reflects the full match set, not the returned page.
func (r *MeetingPostgres) FindFiltered(ctx context.Context, userID string, f repository.MeetingFilter) (*repository.PageResult[model.Meeting], error) {
	f.Normalize()

	where, args := buildMeetingPredicates(userID, f, time.Now().UTC())

	var total int
	countQuery := `SELECT COUNT(*) FROM meetings WHERE ` + where
	if err := q(ctx, r.db).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	pageQuery := fmt.Sprintf(`SELECT `+meetingColumns+` FROM meetings WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		where, orderClause(f), len(args)+1, len(args)+2)
	args = append(args, f.PageSize, (f.PageNumber-1)*f.PageSize)

	rows, err := q(ctx, r.db).QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Meeting, 0)
	ids := make([]string, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		m.Documents = []model.Document{}
		items = append(items, *m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		docs, err := r.documentsFor(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range items {
			if d := docs[items[i].ID]; d != nil {
				items[i].Documents = d
			}
		}
	}

	totalPages := (total + f.PageSize - 1) / f.PageSize

	return &repository.PageResult[model.Meeting]{
		Items:      items,
		PageNumber: f.PageNumber,
		PageSize:   f.PageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}

// FindCancelledBefore returns cancelled meetings past the cutoff with their
// documents, for the purge job.
func (r *MeetingPostgres) FindCancelledBefore(ctx context.Context, cutoff time.Time) ([]model.Meeting, error) {
	const query = `SELECT ` + meetingColumns + ` FROM meetings WHERE is_cancelled = TRUE AND cancelled_at < $1`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meetings := make([]model.Meeting, 0)
	ids := make([]string, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		m.Documents = []model.Document{}
		meetings = append(meetings, *m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		docs, err := r.documentsFor(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range meetings {
			if d := docs[meetings[i].ID]; d != nil {
				meetings[i].Documents = d
			}
		}
	}

	return meetings, nil
}

// DeleteBatch removes document rows then meeting rows for the given IDs.
// Rows already deleted by a concurrent caller are tolerated.
func (r *MeetingPostgres) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := q(ctx, r.db).ExecContext(ctx,
		`DELETE FROM meeting_documents WHERE meeting_id = ANY($1)`, ids); err != nil {
		return err
	}
	_, err := q(ctx, r.db).ExecContext(ctx,
		`DELETE FROM meetings WHERE id = ANY($1)`, ids)
	return err
}

// documentsFor loads the documents of the given meetings in one query,
// keyed by meeting ID, uploaded_at descending.
func (r *MeetingPostgres) documentsFor(ctx context.Context, meetingIDs []string) (map[string][]model.Document, error) {
	const query = `
		SELECT id, meeting_id, file_name, original_file_name, storage_path, file_extension, content_type, file_size, uploaded_at
		FROM meeting_documents
		WHERE meeting_id = ANY($1)
		ORDER BY uploaded_at DESC, id DESC
	`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, meetingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]model.Document, len(meetingIDs))
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(
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
		out[d.MeetingID] = append(out[d.MeetingID], d)
	}
	return out, rows.Err()
}

// buildMeetingPredicates translates a MeetingFilter into a WHERE fragment and
// its ordered argument list. Placeholders start at $1.
func buildMeetingPredicates(userID string, f repository.MeetingFilter, now time.Time) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{userID}

	next := func() int { return len(args) + 1 }

	switch f.Status {
	case repository.StatusUpcoming, repository.StatusActive:
		// Active currently shares the Upcoming predicate; kept as observed.
		clauses = append(clauses, fmt.Sprintf("start_date >= $%d AND is_cancelled = FALSE", next()))
		args = append(args, now)
	case repository.StatusPast:
		clauses = append(clauses, fmt.Sprintf("end_date < $%d AND is_cancelled = FALSE", next()))
		args = append(args, now)
	case repository.StatusCancelled:
		clauses = append(clauses, "is_cancelled = TRUE")
	}

	if f.StartDateFrom != nil {
		clauses = append(clauses, fmt.Sprintf("start_date >= $%d", next()))
		args = append(args, *f.StartDateFrom)
	}
	if f.StartDateTo != nil {
		clauses = append(clauses, fmt.Sprintf("start_date <= $%d", next()))
		args = append(args, *f.StartDateTo)
	}
	if f.EndDateFrom != nil {
		clauses = append(clauses, fmt.Sprintf("end_date >= $%d", next()))
		args = append(args, *f.EndDateFrom)
	}
	if f.EndDateTo != nil {
		clauses = append(clauses, fmt.Sprintf("end_date <= $%d", next()))
		args = append(args, *f.EndDateTo)
	}
	if f.IsCancelled != nil {
		clauses = append(clauses, fmt.Sprintf("is_cancelled = $%d", next()))
		args = append(args, *f.IsCancelled)
	}
	if s := strings.TrimSpace(f.SearchTerm); s != "" {
		n := next()
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
		args = append(args, "%"+s+"%")
	}

	return strings.Join(clauses, " AND "), args
}

// orderClause maps the filter sort key to a column; unknown keys fall back to
// start_date. Column names are fixed strings, never user input.
func orderClause(f repository.MeetingFilter) string {
	col := "start_date"
	switch strings.ToLower(f.OrderBy) {
	case repository.OrderByTitle:
		col = "title"
	case repository.OrderByEndDate:
		col = "end_date"
	case repository.OrderByCreatedAt:
		col = "created_at"
	}
	dir := "ASC"
	if f.Descending {
		dir = "DESC"
	}
	return col + " " + dir
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMeeting(s scanner) (*model.Meeting, error) {
	var (
		m           model.Meeting
		description sql.NullString
		updatedAt   sql.NullTime
		cancelledAt sql.NullTime
	)
	if err := s.Scan(
		&m.ID,
		&m.UserID,
		&m.Title,
		&description,
		&m.StartDate,
		&m.EndDate,
		&m.CreatedAt,
		&updatedAt,
		&m.IsCancelled,
		&cancelledAt,
	); err != nil {
		return nil, err
	}
	m.Description = description.String
	if updatedAt.Valid {
		t := updatedAt.Time
		m.UpdatedAt = &t
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		m.CancelledAt = &t
	}
	return &m, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
