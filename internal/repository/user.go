package repository

import (
	"context"

	"meetapi/internal/model"
)

// UserRepository defines data access for users using SQL queries only.
type UserRepository interface {
	// Create inserts a new user record.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by ID. Missing rows surface as sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by lowercased email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// EmailExists reports whether the lowercased email is already registered.
	EmailExists(ctx context.Context, email string) (bool, error)

	// UpdatePassword replaces a user's password hash. A missing row surfaces
	// as sql.ErrNoRows.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
