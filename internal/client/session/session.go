// Package session keeps the credential key handed out by the login endpoint.
//
// Exactly one account is stored at a time. The token is always persisted under
// the canonical name "access_token"; stores written by older clients under
// "api_key" are still read and are rewritten on the next save.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

var ErrNotFound = errors.New("credentials not found")

const (
	configDir  = ".config/gramctl"
	configFile = "credentials.yaml"

	// KindFile stores everything in a 0600 yaml file
	KindFile = "file"
	// KindKeyring stores tokens in the OS keyring and the URL in a yaml file
	KindKeyring = "keyring"
	// KindMemory keeps credentials for the lifetime of the process
	KindMemory = "memory"
	// KindAuto picks keyring on macOS and Windows, file elsewhere
	KindAuto = "auto"
)

// Credentials represents the stored credentials
type Credentials struct {
	URL          string    `json:"url"`
	Email        string    `json:"email,omitempty"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	SavedAt      time.Time `json:"saved_at,omitempty"`
}

// Store persists a single set of credentials
type Store interface {
	// Load returns ErrNotFound when nothing usable is stored
	Load() (*Credentials, error)
	Save(creds *Credentials) error
	// Delete is idempotent
	Delete() error
}

// DefaultPath returns ~/.config/gramctl/credentials.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir, configFile), nil
}

// New creates a store of the given kind. An empty path means DefaultPath.
func New(kind, path string) (Store, error) {
	if kind == KindMemory {
		return NewMemoryStore(), nil
	}

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	switch kind {
	case KindAuto, "":
		if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
			return NewKeyringStore(path), nil
		}
		return NewFileStore(path), nil
	case KindFile:
		return NewFileStore(path), nil
	case KindKeyring:
		return NewKeyringStore(path), nil
	default:
		return nil, fmt.Errorf("unknown credential store %q (want file, keyring, memory or auto)", kind)
	}
}

func (c *Credentials) clone() *Credentials {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func validate(creds *Credentials) error {
	if creds == nil || creds.AccessToken == "" {
		return fmt.Errorf("refusing to save credentials without an access token")
	}
	return nil
}
