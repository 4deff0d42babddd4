package storage

import (
	"context"
	"errors"

	"github.com/tranphatthinh/gramctl/internal/models"
)

var (
	// ErrNotFound is returned when a user is not found
	ErrNotFound = errors.New("user not found")

	// ErrAlreadyExists is returned when registering an email that is already taken
	ErrAlreadyExists = errors.New("user already exists")

	// ErrStorageUnavailable is returned when storage operations fail
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Store defines the interface for user storage
type Store interface {
	// CreateUser inserts u and sets its ID
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByRefreshToken(ctx context.Context, token string) (*models.User, error)

	// SetRefreshToken replaces the user's refresh token. An empty token clears it.
	SetRefreshToken(ctx context.Context, id uint, token string) error

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error

	// Close closes the storage
	Close() error
}
