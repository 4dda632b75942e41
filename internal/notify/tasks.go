package notify

import "time"

// Task type names routed through the asynq queue. The API process enqueues,
// the worker binary consumes.
const (
	TypeWelcomeEmail        = "email:welcome"
	TypeMeetingCreatedEmail = "email:meeting_created"
)

// WelcomePayload is the body of a TypeWelcomeEmail task.
type WelcomePayload struct {
	ToEmail  string `json:"to_email"`
	UserName string `json:"user_name"`
}

// MeetingCreatedPayload is the body of a TypeMeetingCreatedEmail task.
type MeetingCreatedPayload struct {
	ToEmail     string    `json:"to_email"`
	UserName    string    `json:"user_name"`
	MeetingID   string    `json:"meeting_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}
