package model

import "time"

// User represents a registered account. Email is unique case-insensitively;
// the stored value is always lowercased. PasswordHash never leaves the server.
type User struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone,omitempty"`
	PasswordHash     string    `json:"-"`
	ProfileImagePath string    `json:"profile_image_path,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// FullName returns the display name used in notification emails.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
