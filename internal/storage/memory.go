package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tranphatthinh/gramctl/internal/models"
)

// MemoryStorage keeps users in process memory. Everything is lost on exit.
type MemoryStorage struct {
	mu     sync.RWMutex
	nextID uint
	users  map[uint]*models.User
	logger *slog.Logger
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage(logger *slog.Logger) *MemoryStorage {
	logger.Info("Using in-memory user storage, accounts will not survive a restart")
	return &MemoryStorage{
		nextID: 1,
		users:  make(map[uint]*models.User),
		logger: logger,
	}
}

func (m *MemoryStorage) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrAlreadyExists
		}
	}

	now := time.Now()
	u.ID = m.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	m.nextID++
	m.users[u.ID] = copyUser(u)

	m.logger.Debug("User created", "user_id", u.ID, "email", u.Email)
	return nil
}

func (m *MemoryStorage) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (m *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *MemoryStorage) GetUserByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return m.find(func(u *models.User) bool {
		return u.RefreshToken != nil && *u.RefreshToken == token
	})
}

func (m *MemoryStorage) SetRefreshToken(ctx context.Context, id uint, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.RefreshToken = nullable(token)
	u.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.RefreshToken != nil {
		token := *u.RefreshToken
		c.RefreshToken = &token
	}
	return &c
}

func nullable(token string) *string {
	if token == "" {
		return nil
	}
	return &token
}
