package repository

import (
	"context"
	"time"

	"meetapi/internal/model"
)

// MeetingStatus selects a lifecycle predicate in MeetingFilter.
type MeetingStatus int

const (
	StatusAll MeetingStatus = iota
	StatusUpcoming
	StatusPast
	StatusCancelled
	StatusActive
)

// Sortable column keys accepted by MeetingFilter.OrderBy. Anything else
// falls back to OrderByStartDate.
const (
	OrderByTitle     = "title"
	OrderByEndDate   = "enddate"
	OrderByCreatedAt = "createdat"
	OrderByStartDate = "startdate"
)

// MeetingFilter carries every predicate of the filtered meeting query.
// Status and IsCancelled are independent: both apply when both are set, even
// when the combination can only yield an empty result.
type MeetingFilter struct {
	Status        MeetingStatus
	StartDateFrom *time.Time
	StartDateTo   *time.Time
	EndDateFrom   *time.Time
	EndDateTo     *time.Time
	IsCancelled   *bool
	SearchTerm    string

	PageNumber int
	PageSize   int

	OrderBy    string
	Descending bool
}

// Normalize clamps pagination to the documented bounds: page numbers below 1
// become 1, page sizes outside 1..100 reset to 10.
func (f *MeetingFilter) Normalize() {
	if f.PageNumber < 1 {
		f.PageNumber = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 10
	}
}

// MeetingRepository defines data access for meetings using SQL queries only.
// No business logic here — strictly persistence operations.
type MeetingRepository interface {
	// Create inserts a new meeting row.
	Create(ctx context.Context, m *model.Meeting) (*model.Meeting, error)

	// FindByID returns a meeting with its documents eagerly loaded, ordered by
	// uploaded_at descending. Missing rows surface as sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Meeting, error)

	// Update persists title, description, dates and updated_at of a
	// not-yet-cancelled meeting. Cancellation columns are never written by
	// this statement; losing a race against a concurrent Cancel surfaces as
	// sql.ErrNoRows.
	Update(ctx context.Context, m *model.Meeting) error

	// Cancel atomically marks a not-yet-cancelled meeting cancelled at the
	// given time. It reports false when the row was already cancelled or no
	// longer exists, so the transition can never be replayed or reversed.
	Cancel(ctx context.Context, id string, at time.Time) (bool, error)

	// Delete removes a meeting by ID. Document rows cascade at the schema
	// level; callers that must reclaim blobs delete them beforehand.
	// Deleting an absent row is not an error.
	Delete(ctx context.Context, id string) error

	// FindFiltered returns one page of a user's meetings plus the total match
	// count computed before pagination. Documents are eagerly loaded.
	FindFiltered(ctx context.Context, userID string, f MeetingFilter) (*PageResult[model.Meeting], error)

	// FindCancelledBefore returns every meeting cancelled before the cutoff,
	// documents included, for the retention purge job.
	FindCancelledBefore(ctx context.Context, cutoff time.Time) ([]model.Meeting, error)

	// DeleteBatch removes the given meetings (and their document rows) in one
	// statement pair. Zero rows affected is not an error.
	DeleteBatch(ctx context.Context, ids []string) error
}
