package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tranphatthinh/gramctl/internal/models"
)

// SeedUser represents a user in the users.yaml file
type SeedUser struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"` // bcrypt hash
}

// SeedFile represents the structure of users.yaml
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

// LoadSeedFile reads and parses a users.yaml file
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse users file (invalid YAML syntax): %w", err)
	}

	for i, u := range seed.Users {
		if strings.TrimSpace(u.Email) == "" || u.Password == "" {
			return nil, fmt.Errorf("users[%d]: email and password are required", i)
		}
		if !strings.HasPrefix(u.Password, "$2") {
			return nil, fmt.Errorf("users[%d]: password must be a bcrypt hash (see gram-stub auth hash-password)", i)
		}
	}

	return &seed, nil
}

// Seed creates the users of the file at path. Users that already exist are skipped.
func Seed(ctx context.Context, store Store, path string, logger *slog.Logger) (int, error) {
	seed, err := LoadSeedFile(path)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, u := range seed.Users {
		err := store.CreateUser(ctx, models.NewUser(strings.TrimSpace(u.Email), u.Password))
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrAlreadyExists):
			logger.Debug("Seed user already exists", "email", u.Email)
		default:
			return created, fmt.Errorf("failed to seed %s: %w", u.Email, err)
		}
	}

	logger.Info("Users seeded",
		"users_file", path,
		"user_count", len(seed.Users),
		"created", created)

	return created, nil
}
