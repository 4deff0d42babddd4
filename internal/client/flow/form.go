package flow

import (
	"strings"
)

// Form holds the two credential fields of the login and registration pages
type Form struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate rejects blank fields. Email is trimmed; the password is taken as typed.
// The email's format is the server's business.
func (f *Form) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	if f.Email == "" || f.Password == "" {
		return ErrInvalidForm
	}
	return nil
}

// authResponse covers every reply shape of the login, registration and refresh endpoints
type authResponse struct {
	AccessToken  string `json:"access_token"`
	APIKey       string `json:"api_key"`
	RefreshToken string `json:"refresh_token"`
	Email        string `json:"email"`
	Message      string `json:"message"`
	Error        string `json:"error"`
}

// token returns the credential key, accepting the legacy field name
func (r *authResponse) token() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.APIKey
}
