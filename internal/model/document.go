package model

import "time"

// Document represents a file attached to a meeting.
// StoragePath is a forward-slash relative object key of the shape
// <category>/<meetingID>/<generated>.<ext>; for as long as the row exists the
// blob behind that key must exist too. The attachment workflow protects this
// with a compensating delete on failed uploads.
type Document struct {
	ID               string    `json:"id"`
	MeetingID        string    `json:"meeting_id"`
	FileName         string    `json:"file_name"`
	OriginalFileName string    `json:"original_file_name"`
	StoragePath      string    `json:"storage_path"`
	FileExtension    string    `json:"file_extension"`
	ContentType      string    `json:"content_type"`
	FileSize         int64     `json:"file_size"`
	UploadedAt       time.Time `json:"uploaded_at"`

	// FileURL is derived from the configured base URL; it is not persisted.
	FileURL string `json:"file_url,omitempty"`
}
