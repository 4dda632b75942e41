package service

import "errors"

// Sentinel errors returned across the service boundary. Handlers map these to
// HTTP status codes; anything else is treated as an internal failure. Causes
// from the storage layer are wrapped with %w so errors.Is still matches.
var (
	// Meeting lifecycle.
	ErrMeetingNotFound  = errors.New("meeting not found")
	ErrForbidden        = errors.New("caller does not own this resource")
	ErrInvalidDateRange = errors.New("end date must be after start date")
	ErrStartInPast      = errors.New("start date cannot be in the past")
	ErrMeetingExpired   = errors.New("meeting has already ended")
	ErrAlreadyCancelled = errors.New("meeting is already cancelled")

	// Document attachment workflow.
	ErrDocumentNotFound   = errors.New("document not found")
	ErrEmptyFile          = errors.New("no file content provided")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrFileTooLarge       = errors.New("file exceeds the maximum allowed size")
	ErrBlobMissing        = errors.New("stored file is missing from storage")

	// Accounts.
	ErrEmailTaken         = errors.New("email is already registered")
	ErrWeakPassword       = errors.New("password does not meet the complexity requirements")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)
