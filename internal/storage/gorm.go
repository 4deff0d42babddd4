package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tranphatthinh/gramctl/internal/models"
)

// GormStorage keeps users in a SQL database through gorm
type GormStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewSQLiteStorage opens (creating when needed) the SQLite database at path
func NewSQLiteStorage(path string, logger *slog.Logger) (*GormStorage, error) {
	return NewGormStorage(sqlite.Open(path), logger)
}

// NewPostgresStorage connects to PostgreSQL with a postgres:// URL
func NewPostgresStorage(dsn string, logger *slog.Logger) (*GormStorage, error) {
	return NewGormStorage(postgres.Open(dsn), logger)
}

// NewGormStorage opens the database and migrates the users table
func NewGormStorage(dialector gorm.Dialector, logger *slog.Logger) (*GormStorage, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate users table: %w", err)
	}

	logger.Info("SQL user storage ready", "dialect", dialector.Name())

	return &GormStorage{db: db, logger: logger}, nil
}

func (s *GormStorage) CreateUser(ctx context.Context, u *models.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyExists
		}
		return tx.Create(u).Error
	})

	switch {
	case err == nil:
		s.logger.Debug("User created", "user_id", u.ID, "email", u.Email)
		return nil
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrAlreadyExists
	default:
		return s.unavailable("create user", err)
	}
}

func (s *GormStorage) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *GormStorage) GetUserByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.first(ctx, "refresh_token = ?", token)
}

func (s *GormStorage) SetRefreshToken(ctx context.Context, id uint, token string) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("refresh_token", nullable(token))
	if result.Error != nil {
		return s.unavailable("update refresh token", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return s.unavailable("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return s.unavailable("ping", err)
	}
	return nil
}

func (s *GormStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStorage) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, s.unavailable("query user", err)
	}
	return &u, nil
}

func (s *GormStorage) unavailable(op string, err error) error {
	s.logger.Error("Storage operation failed", "operation", op, "error", err)
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
