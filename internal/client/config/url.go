package config

import (
	"os"
	"strings"
)

const (
	// URLEnvVar is the environment variable for server URL
	URLEnvVar = "GRAMCTL_URL"

	// DefaultURL is the endpoint the web pages talk to when nothing else is configured
	DefaultURL = "http://127.0.0.1:5000"
)

// ResolveURL resolves the server URL using precedence:
// 1. flagURL (--url flag)
// 2. Environment variable (GRAMCTL_URL)
// 3. URL of the stored credentials
// 4. DefaultURL
func ResolveURL(flagURL, storedURL string) string {
	if flagURL != "" {
		return NormalizeURL(flagURL)
	}

	if envURL := os.Getenv(URLEnvVar); envURL != "" {
		return NormalizeURL(envURL)
	}

	if storedURL != "" {
		return NormalizeURL(storedURL)
	}

	return DefaultURL
}

// NormalizeURL removes trailing slashes from URLs
func NormalizeURL(url string) string {
	return strings.TrimRight(url, "/")
}

// PageURL joins a server base URL and a page path
func PageURL(base, path string) string {
	return NormalizeURL(base) + "/" + strings.TrimLeft(path, "/")
}
