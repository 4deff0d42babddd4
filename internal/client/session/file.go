package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// fileRecord is the on-disk layout of the credentials file
type fileRecord struct {
	URL          string    `yaml:"url"`
	Email        string    `yaml:"email,omitempty"`
	AccessToken  string    `yaml:"access_token,omitempty"`
	RefreshToken string    `yaml:"refresh_token,omitempty"`
	SavedAt      time.Time `yaml:"saved_at,omitempty"`

	// Written by older clients; read-only.
	LegacyAPIKey string `yaml:"api_key,omitempty"`
}

// FileStore keeps credentials in a yaml file readable only by the owner
type FileStore struct {
	path string
}

// NewFileStore creates a file store at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the credentials file location
func (s *FileStore) Path() string {
	return s.path
}

// Load loads credentials from the file
func (s *FileStore) Load() (*Credentials, error) {
	rec, err := readRecord(s.path)
	if err != nil {
		return nil, err
	}

	token := rec.AccessToken
	if token == "" {
		token = rec.LegacyAPIKey
	}
	if token == "" {
		return nil, ErrNotFound
	}

	return &Credentials{
		URL:          rec.URL,
		Email:        rec.Email,
		AccessToken:  token,
		RefreshToken: rec.RefreshToken,
		SavedAt:      rec.SavedAt,
	}, nil
}

// Save saves credentials to the file, replacing whatever was stored
func (s *FileStore) Save(creds *Credentials) error {
	if err := validate(creds); err != nil {
		return err
	}

	return writeRecord(s.path, &fileRecord{
		URL:          creds.URL,
		Email:        creds.Email,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		SavedAt:      creds.SavedAt,
	})
}

// Delete removes the credentials file
func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credentials file: %w", err)
	}
	return nil
}

func readRecord(path string) (*fileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var rec fileRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return &rec, nil
}

// writeRecord writes the file atomically (temp file + rename) with 0600 permissions
func writeRecord(path string, rec *fileRecord) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".credentials-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if err := tempFile.Chmod(0600); err != nil {
		return fmt.Errorf("failed to set credentials file permissions: %w", err)
	}
	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	tempFile = nil

	return nil
}
