package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"meetapi/internal/model"
	"meetapi/internal/notify"
	"meetapi/internal/repository"
	"meetapi/internal/storage"
)

// CreateMeetingInput carries the writable fields for a new meeting.
type CreateMeetingInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// UpdateMeetingInput carries the writable fields for an existing meeting.
// The owner and cancellation state are not client-writable.
type UpdateMeetingInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// MeetingService defines the meeting lifecycle use cases. Every operation is
// scoped to the calling user: a meeting owned by someone else behaves like a
// distinct ErrForbidden, never like a missing one.
type MeetingService interface {
	// Create validates dates and persists a new meeting for the user. A
	// confirmation email is queued on success; queue failures never fail the
	// create.
	Create(ctx context.Context, userID string, in CreateMeetingInput) (*model.Meeting, error)

	// GetByID returns a meeting with its documents, owner-checked.
	GetByID(ctx context.Context, meetingID, userID string) (*model.Meeting, error)

	// Update replaces title, description and dates. Cancelled and expired
	// meetings are frozen.
	Update(ctx context.Context, meetingID, userID string, in UpdateMeetingInput) (*model.Meeting, error)

	// Cancel marks the meeting cancelled. The transition is one-way.
	Cancel(ctx context.Context, meetingID, userID string) error

	// Delete removes the meeting, its document rows and their blobs.
	Delete(ctx context.Context, meetingID, userID string) error

	// List returns one page of the user's meetings matching the filter, with
	// the total count taken before pagination.
	List(ctx context.Context, userID string, f repository.MeetingFilter) (*repository.PageResult[model.Meeting], error)
}

type meetingService struct {
	meetings repository.MeetingRepository
	users    repository.UserRepository
	store    storage.Storage
	mailer   notify.Mailer
	baseURL  string
}

// NewMeetingService constructs a MeetingService.
func NewMeetingService(meetings repository.MeetingRepository, users repository.UserRepository, store storage.Storage, mailer notify.Mailer, baseURL string) MeetingService {
	return &meetingService{
		meetings: meetings,
		users:    users,
		store:    store,
		mailer:   mailer,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (s *meetingService) Create(ctx context.Context, userID string, in CreateMeetingInput) (*model.Meeting, error) {
	now := time.Now().UTC()
	if !in.EndDate.After(in.StartDate) {
		return nil, ErrInvalidDateRange
	}
	// Start-in-past is rejected on create only; updates may keep a start date
	// that has since passed.
	if in.StartDate.Before(now) {
		return nil, ErrStartInPast
	}

	m := &model.Meeting{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		StartDate:   in.StartDate.UTC(),
		EndDate:     in.EndDate.UTC(),
		CreatedAt:   now,
	}
	created, err := s.meetings.Create(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}

	s.notifyCreated(ctx, created)

	s.decorate(created)
	return created, nil
}

// notifyCreated queues the confirmation email. Failures are logged and
// swallowed: the meeting is already committed.
func (s *meetingService) notifyCreated(ctx context.Context, m *model.Meeting) {
	owner, err := s.users.FindByID(ctx, m.UserID)
	if err != nil {
		logJSON("warn", "skipping meeting-created email", map[string]any{
			"meeting_id": m.ID,
			"user_id":    m.UserID,
			"error":      err.Error(),
		})
		return
	}
	s.mailer.QueueMeetingCreatedEmail(owner.Email, owner.FullName(), m)
}

func (s *meetingService) GetByID(ctx context.Context, meetingID, userID string) (*model.Meeting, error) {
	m, err := s.load(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}
	s.decorate(m)
	return m, nil
}

func (s *meetingService) Update(ctx context.Context, meetingID, userID string, in UpdateMeetingInput) (*model.Meeting, error) {
	m, err := s.load(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}
	if m.IsCancelled {
		return nil, ErrAlreadyCancelled
	}
	if m.Expired(time.Now().UTC()) {
		return nil, ErrMeetingExpired
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, ErrInvalidDateRange
	}

	now := time.Now().UTC()
	m.Title = in.Title
	m.Description = in.Description
	m.StartDate = in.StartDate.UTC()
	m.EndDate = in.EndDate.UTC()
	m.UpdatedAt = &now

	if err := s.meetings.Update(ctx, m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost the race against a concurrent cancel; the guarded
			// statement refused to touch the row.
			return nil, ErrAlreadyCancelled
		}
		return nil, fmt.Errorf("update meeting: %w", err)
	}
	s.decorate(m)
	return m, nil
}

func (s *meetingService) Cancel(ctx context.Context, meetingID, userID string) error {
	m, err := s.load(ctx, meetingID, userID)
	if err != nil {
		return err
	}
	if m.IsCancelled {
		return ErrAlreadyCancelled
	}
	now := time.Now().UTC()
	if m.Expired(now) {
		return ErrMeetingExpired
	}

	ok, err := s.meetings.Cancel(ctx, m.ID, now)
	if err != nil {
		return fmt.Errorf("cancel meeting: %w", err)
	}
	if !ok {
		// Another request cancelled it between our load and the update.
		return ErrAlreadyCancelled
	}
	return nil
}

func (s *meetingService) Delete(ctx context.Context, meetingID, userID string) error {
	m, err := s.load(ctx, meetingID, userID)
	if err != nil {
		return err
	}
	if m.Expired(time.Now().UTC()) {
		return ErrMeetingExpired
	}

	// Reclaim blobs before the rows go away; a failed blob delete is logged
	// and skipped so one stuck object cannot hold the whole meeting hostage.
	for _, doc := range m.Documents {
		if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
			logJSON("warn", "failed to delete document blob", map[string]any{
				"meeting_id":  m.ID,
				"document_id": doc.ID,
				"key":         doc.StoragePath,
				"error":       err.Error(),
			})
		}
	}

	if err := s.meetings.Delete(ctx, meetingID); err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	return nil
}

func (s *meetingService) List(ctx context.Context, userID string, f repository.MeetingFilter) (*repository.PageResult[model.Meeting], error) {
	f.Normalize()
	page, err := s.meetings.FindFiltered(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	for i := range page.Items {
		s.decorate(&page.Items[i])
	}
	return page, nil
}

// load fetches a meeting and enforces ownership. Missing and foreign-owned
// meetings surface as distinct errors.
func (s *meetingService) load(ctx context.Context, meetingID, userID string) (*model.Meeting, error) {
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

// decorate fills the derived FileURL on every attached document.
func (s *meetingService) decorate(m *model.Meeting) {
	for i := range m.Documents {
		m.Documents[i].FileURL = s.baseURL + "/" + m.Documents[i].StoragePath
	}
}
