package session

import (
	"errors"
	"fmt"
	"os"
)

const (
	// TokenEnvVar is the environment variable for the access token
	TokenEnvVar = "GRAMCTL_ACCESS_TOKEN"
)

// ResolveToken resolves the access token using precedence:
// 1. flagToken (--token flag)
// 2. Environment variable (GRAMCTL_ACCESS_TOKEN)
// 3. Stored credentials
// Returns empty string if no token found
func ResolveToken(flagToken string, store Store) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}

	if envToken := os.Getenv(TokenEnvVar); envToken != "" {
		return envToken, nil
	}

	if store == nil {
		return "", nil
	}

	creds, err := store.Load()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load stored token: %w", err)
	}

	return creds.AccessToken, nil
}

// StoredURL returns the server URL of the stored credentials, or "" when none
func StoredURL(store Store) string {
	if store == nil {
		return ""
	}
	creds, err := store.Load()
	if err != nil {
		return ""
	}
	return creds.URL
}
