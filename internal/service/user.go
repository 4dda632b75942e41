package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"meetapi/internal/auth"
	"meetapi/internal/config"
	"meetapi/internal/model"
	"meetapi/internal/notify"
	"meetapi/internal/repository"
	"meetapi/internal/storage"
)

// Object key category for profile images.
const categoryProfile = "profile"

// RegisterInput carries the fields of a registration request.
// ProfileImage is optional.
type RegisterInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Password     string
	ProfileImage *UploadInput
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *model.User
	Token string
}

// UserService defines the account use cases.
type UserService interface {
	// Register creates an account with a hashed password, storing an optional
	// profile image, and queues a welcome email. Returns a signed token.
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)

	// Login verifies credentials and returns a signed token. Unknown email
	// and wrong password are indistinguishable to the caller.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// GetByID returns a user profile.
	GetByID(ctx context.Context, userID string) (*model.User, error)

	// ChangePassword verifies the current password and replaces it with the
	// new one, which must satisfy the registration password policy.
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

type userService struct {
	users  repository.UserRepository
	tx     repository.TxManager
	store  storage.Storage
	issuer *auth.TokenIssuer
	mailer notify.Mailer
	upload config.UploadConfig
}

// NewUserService constructs a UserService.
func NewUserService(users repository.UserRepository, tx repository.TxManager, store storage.Storage, issuer *auth.TokenIssuer, mailer notify.Mailer, upload config.UploadConfig) UserService {
	return &userService{
		users:  users,
		tx:     tx,
		store:  store,
		issuer: issuer,
		mailer: mailer,
		upload: upload,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}
	if !auth.ValidPassword(in.Password) {
		return nil, ErrWeakPassword
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        email,
		Phone:        in.Phone,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	var imageKey string
	if in.ProfileImage != nil {
		ext, err := validateFile(s.upload, categoryProfile, in.ProfileImage.FileName, in.ProfileImage.Size)
		if err != nil {
			return nil, err
		}
		imageKey = categoryProfile + "/" + uuid.New().String() + ext
		u.ProfileImagePath = imageKey
	}

	uploaded := false
	var created *model.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if imageKey != "" {
			_, err := s.store.Put(ctx, imageKey, bytes.NewReader(in.ProfileImage.Content), storage.PutObjectOptions{
				Size:        in.ProfileImage.Size,
				ContentType: in.ProfileImage.ContentType,
			})
			if err != nil {
				return fmt.Errorf("upload profile image: %w", err)
			}
			uploaded = true
		}
		created, err = s.users.Create(ctx, u)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		if uploaded {
			if delErr := s.store.Delete(context.WithoutCancel(ctx), imageKey); delErr != nil {
				logJSON("error", "compensating profile image delete failed", map[string]any{
					"key":   imageKey,
					"error": delErr.Error(),
				})
			}
		}
		return nil, err
	}

	s.mailer.QueueWelcomeEmail(created.Email, created.FullName())

	token, err := s.issuer.Issue(created.ID, created.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: created, Token: token}, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *userService) GetByID(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if !auth.VerifyPassword(u.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}
	if !auth.ValidPassword(newPassword) {
		return ErrWeakPassword
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
