package postgres

import (
	"context"
	"database/sql"
	"strings"

	"meetapi/internal/model"
	"meetapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, first_name, last_name, email, phone, password_hash, profile_image_path, created_at`

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const query = `
		INSERT INTO users (id, first_name, last_name, email, phone, password_hash, profile_image_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	row := q(ctx, r.db).QueryRowContext(ctx, query,
		u.ID,
		u.FirstName,
		u.LastName,
		strings.ToLower(u.Email),
		u.Phone,
		u.PasswordHash,
		nullString(u.ProfileImagePath),
		u.CreatedAt,
	)
	return scanUser(row)
}

// FindByID fetches a single user by ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(q(ctx, r.db).QueryRowContext(ctx, query, id))
}

// FindByEmail fetches a single user by email, matched case-insensitively.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(q(ctx, r.db).QueryRowContext(ctx, query, strings.ToLower(email)))
}

// EmailExists reports whether the email is already registered.
func (r *UserPostgres) EmailExists(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx, query, strings.ToLower(email)).Scan(&exists)
	return exists, err
}

// UpdatePassword replaces the stored password hash.
func (r *UserPostgres) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2 WHERE id = $1`
	res, err := q(ctx, r.db).ExecContext(ctx, query, id, passwordHash)
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

func scanUser(s scanner) (*model.User, error) {
	var (
		u            model.User
		phone        sql.NullString
		profileImage sql.NullString
	)
	if err := s.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&phone,
		&u.PasswordHash,
		&profileImage,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	u.Phone = phone.String
	u.ProfileImagePath = profileImage.String
	return &u, nil
}
