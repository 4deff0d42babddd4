package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

const keychainService = "gramctl"

// keyringSecret is the JSON blob kept in the keyring
type keyringSecret struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// KeyringStore keeps tokens in the OS keyring and the URL in a yaml file.
// The server URL is used as the keyring account.
type KeyringStore struct {
	path string
}

// NewKeyringStore creates a keyring store whose side file lives at path
func NewKeyringStore(path string) *KeyringStore {
	return &KeyringStore{path: path}
}

// Load loads the URL from the side file and tokens from the keyring
func (s *KeyringStore) Load() (*Credentials, error) {
	rec, err := readRecord(s.path)
	if err != nil {
		return nil, err
	}
	if rec.URL == "" {
		return nil, ErrNotFound
	}

	raw, err := keyring.Get(keychainService, rec.URL)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token from keyring: %w", err)
	}

	var secret keyringSecret
	if err := json.Unmarshal([]byte(raw), &secret); err != nil {
		// Entries written before the JSON layout hold the bare token.
		secret = keyringSecret{AccessToken: raw}
	}
	if secret.AccessToken == "" {
		return nil, ErrNotFound
	}

	return &Credentials{
		URL:          rec.URL,
		Email:        rec.Email,
		AccessToken:  secret.AccessToken,
		RefreshToken: secret.RefreshToken,
		SavedAt:      rec.SavedAt,
	}, nil
}

// Save saves URL to the side file and tokens to the keyring
func (s *KeyringStore) Save(creds *Credentials) error {
	if err := validate(creds); err != nil {
		return err
	}
	if creds.URL == "" {
		return fmt.Errorf("keyring store requires a server URL")
	}

	// Drop the entry of a previously stored server so only one account remains.
	if prev, err := readRecord(s.path); err == nil && prev.URL != "" && prev.URL != creds.URL {
		if err := keyring.Delete(keychainService, prev.URL); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to delete previous token from keyring: %w", err)
		}
	}

	if err := writeRecord(s.path, &fileRecord{
		URL:     creds.URL,
		Email:   creds.Email,
		SavedAt: creds.SavedAt,
	}); err != nil {
		return err
	}

	blob, err := json.Marshal(keyringSecret{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal keyring secret: %w", err)
	}

	if err := keyring.Set(keychainService, creds.URL, string(blob)); err != nil {
		return fmt.Errorf("failed to save token to keyring: %w", err)
	}

	return nil
}

// Delete removes the keyring entry and the side file
func (s *KeyringStore) Delete() error {
	if rec, err := readRecord(s.path); err == nil && rec.URL != "" {
		if err := keyring.Delete(keychainService, rec.URL); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to delete token from keyring: %w", err)
		}
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}

	return nil
}
