package model

import "time"

// Meeting is owned by exactly one user. The owner never changes after creation.
//
// Lifecycle: scheduled -> active -> completed, with an orthogonal one-way
// cancelled transition reachable only while EndDate has not passed. Cancelled
// meetings are removed by the retention purge job; completed meetings stay
// until an administrative path handles them.
type Meeting struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	IsCancelled bool       `json:"is_cancelled"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	// Documents is populated by reads that eager-load attachments.
	Documents []Document `json:"documents"`
}

// Expired reports whether the meeting already ended at the given instant.
// Expired meetings are frozen: no update, cancel or user-initiated delete.
func (m *Meeting) Expired(now time.Time) bool {
	return m.EndDate.Before(now)
}

// OwnedBy reports whether userID owns the meeting.
func (m *Meeting) OwnedBy(userID string) bool {
	return m.UserID == userID
}
