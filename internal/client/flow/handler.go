// Package flow implements the login, registration and page-guard steps of the
// client: read the two credential fields, make one request, then either store
// the returned credential and move on, or alert.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tranphatthinh/gramctl/internal/client"
	"github.com/tranphatthinh/gramctl/internal/client/config"
	"github.com/tranphatthinh/gramctl/internal/client/session"
)

// User-facing messages
const (
	msgLoginFailed      = "Login failed! Please check your email and password."
	msgRegisterFailed   = "Registration failed"
	msgRegistered       = "Registration successful! You will be redirected to the login page."
	msgGenericFailure   = "Something went wrong, please try again!"
	msgMalformed        = "The server returned an unexpected response."
	msgNotLoggedIn      = "You are not logged in!"
	msgSessionExpired   = "Your session has expired, please log in again."
	msgSaveFailed       = "Logged in, but the credential could not be saved."
	defaultRedirectWait = 2 * time.Second
)

// API is the part of client.Client the handlers need
type API interface {
	PostJSON(ctx context.Context, path string, body, out interface{}) (int, error)
}

// Options tunes a Handler
type Options struct {
	// BaseURL of the server, used for navigation targets and stored with the credential
	BaseURL string
	// RedirectDelay is the pause between a successful registration and the redirect.
	// Zero means the default of two seconds; use a negative value for no pause.
	RedirectDelay time.Duration
	Logger        *slog.Logger
	Now           func() time.Time
}

// Outcome describes a finished step
type Outcome struct {
	Credentials *session.Credentials
	Message     string
	// Key is a credential returned by registration, shown but never stored
	Key      string
	Redirect string
	// Shared is true when the result came from an identical submission already in flight
	Shared bool
}

// Handler runs the steps against one server and one credential store
type Handler struct {
	api           API
	baseURL       string
	store         session.Store
	presenter     Presenter
	logger        *slog.Logger
	redirectDelay time.Duration
	now           func() time.Time

	group singleflight.Group
}

// NewHandler creates a handler
func NewHandler(api API, store session.Store, presenter Presenter, opts Options) *Handler {
	if presenter == nil {
		presenter = NopPresenter{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	switch {
	case opts.RedirectDelay == 0:
		opts.RedirectDelay = defaultRedirectWait
	case opts.RedirectDelay < 0:
		opts.RedirectDelay = 0
	}

	return &Handler{
		api:           api,
		baseURL:       config.NormalizeURL(opts.BaseURL),
		store:         store,
		presenter:     presenter,
		logger:        opts.Logger,
		redirectDelay: opts.RedirectDelay,
		now:           opts.Now,
	}
}

// BaseURL returns the server the handler talks to
func (h *Handler) BaseURL() string {
	return h.baseURL
}

// Login submits the login form. On success the credential is stored and the
// user is sent to the grammar-check page.
func (h *Handler) Login(ctx context.Context, form Form) (*Outcome, error) {
	if err := form.Validate(); err != nil {
		h.presenter.Alert(err.Error())
		return nil, err
	}

	return h.once(submissionKey("login", form), func() (*Outcome, error) {
		return h.login(ctx, form)
	})
}

func (h *Handler) login(ctx context.Context, form Form) (*Outcome, error) {
	var resp authResponse
	status, err := h.api.PostJSON(ctx, config.LoginPath, form, &resp)
	if err != nil {
		return nil, h.fail(classify(err, status, msgLoginFailed), msgLoginFailed)
	}

	if resp.Error != "" || status >= 300 {
		return nil, h.fail(rejected(status, resp.Error, msgLoginFailed), msgLoginFailed)
	}

	token := resp.token()
	if token == "" {
		return nil, h.fail(fmt.Errorf("%w: no access_token in login reply", ErrMalformedResponse), msgLoginFailed)
	}

	email := resp.Email
	if email == "" {
		email = form.Email
	}

	creds := &session.Credentials{
		URL:          h.baseURL,
		Email:        email,
		AccessToken:  token,
		RefreshToken: resp.RefreshToken,
		SavedAt:      h.now(),
	}
	if err := h.store.Save(creds); err != nil {
		h.logger.Error("Failed to store credential", "error", err)
		h.presenter.Alert(msgSaveFailed)
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	h.logger.Info("Login succeeded", "email", email, "server", h.baseURL)
	h.presenter.Notice(fmt.Sprintf("Logged in to %s as %s", h.baseURL, email))

	target := config.PageURL(h.baseURL, config.AfterLoginPage)
	h.presenter.Navigate(target)

	return &Outcome{Credentials: creds, Redirect: target}, nil
}

// Register submits the registration form. On success the server's message and
// any returned key are shown, then after the redirect delay the user is sent to
// the login page. Nothing is stored.
func (h *Handler) Register(ctx context.Context, form Form) (*Outcome, error) {
	if err := form.Validate(); err != nil {
		h.presenter.Alert(err.Error())
		return nil, err
	}

	return h.once(submissionKey("register", form), func() (*Outcome, error) {
		return h.register(ctx, form)
	})
}

func (h *Handler) register(ctx context.Context, form Form) (*Outcome, error) {
	var resp authResponse
	status, err := h.api.PostJSON(ctx, config.RegisterPath, form, &resp)
	if err != nil {
		return nil, h.fail(classify(err, status, msgRegisterFailed), msgGenericFailure)
	}

	if resp.Error != "" || status >= 300 {
		return nil, h.fail(rejected(status, resp.Error, msgRegisterFailed), msgRegisterFailed)
	}

	out := &Outcome{Message: resp.Message, Key: resp.token()}
	if out.Message == "" {
		out.Message = msgRegistered
	}

	h.logger.Info("Registration succeeded", "email", form.Email, "server", h.baseURL)
	h.presenter.Notice(out.Message)
	if out.Key != "" {
		h.presenter.Notice("Your key: " + out.Key)
	}

	if h.redirectDelay > 0 {
		timer := time.NewTimer(h.redirectDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-timer.C:
		}
	}

	out.Redirect = config.PageURL(h.baseURL, config.AfterRegisterPage)
	h.presenter.Navigate(out.Redirect)

	return out, nil
}

// Guard checks for a stored credential before an authenticated page is used.
// Without one the user is alerted and sent to the login page. An expired JWT is
// renewed once with the refresh token when one is stored.
func (h *Handler) Guard(ctx context.Context) (*session.Credentials, error) {
	creds, err := h.store.Load()
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			h.logger.Warn("Failed to read stored credential", "error", err)
			err = fmt.Errorf("%w: %v", ErrNotLoggedIn, err)
		} else {
			err = ErrNotLoggedIn
		}
		h.redirectToLogin(msgNotLoggedIn)
		return nil, err
	}

	if !creds.Expired(h.now()) {
		h.logger.Debug("Credential present", "email", creds.Email)
		return creds, nil
	}

	if creds.RefreshToken != "" {
		refreshed, err := h.refresh(ctx, creds)
		if err == nil {
			return refreshed, nil
		}
		h.logger.Warn("Token refresh failed", "error", err)
	}

	h.redirectToLogin(msgSessionExpired)
	return nil, fmt.Errorf("%w: access token expired", ErrNotLoggedIn)
}

// Refresh exchanges the stored refresh token for a new access token
func (h *Handler) Refresh(ctx context.Context) (*Outcome, error) {
	creds, err := h.store.Load()
	if err != nil || creds.RefreshToken == "" {
		h.redirectToLogin(msgNotLoggedIn)
		return nil, ErrNotLoggedIn
	}

	refreshed, err := h.refresh(ctx, creds)
	if err != nil {
		return nil, h.fail(err, msgSessionExpired)
	}

	h.presenter.Notice("Access token refreshed")
	return &Outcome{Credentials: refreshed}, nil
}

func (h *Handler) refresh(ctx context.Context, creds *session.Credentials) (*session.Credentials, error) {
	var resp authResponse
	status, err := h.api.PostJSON(ctx, config.RefreshPath, map[string]string{"refresh_token": creds.RefreshToken}, &resp)
	if err != nil {
		return nil, classify(err, status, msgSessionExpired)
	}
	if resp.Error != "" || status >= 300 {
		return nil, rejected(status, resp.Error, msgSessionExpired)
	}

	token := resp.token()
	if token == "" {
		return nil, fmt.Errorf("%w: no access_token in refresh reply", ErrMalformedResponse)
	}

	updated := *creds
	updated.AccessToken = token
	if resp.RefreshToken != "" {
		updated.RefreshToken = resp.RefreshToken
	}
	if resp.Email != "" {
		updated.Email = resp.Email
	}
	updated.SavedAt = h.now()

	if err := h.store.Save(&updated); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	h.logger.Info("Access token refreshed", "email", updated.Email)
	return &updated, nil
}

// Logout revokes the refresh token on the server when possible, then removes the
// local credential. Removal succeeds even when nothing is stored.
func (h *Handler) Logout(ctx context.Context) (*Outcome, error) {
	creds, err := h.store.Load()
	if err == nil && creds.RefreshToken != "" {
		status, err := h.api.PostJSON(ctx, config.LogoutPath, map[string]string{"refresh_token": creds.RefreshToken}, nil)
		if err != nil || status >= 300 {
			h.logger.Warn("Server-side logout failed", "error", err, "status_code", status)
		}
	}

	if err := h.store.Delete(); err != nil {
		h.presenter.Alert("Could not remove the stored credential.")
		return nil, fmt.Errorf("failed to remove credentials: %w", err)
	}

	h.presenter.Notice("Logged out successfully")
	target := config.PageURL(h.baseURL, config.LoginPage)
	h.presenter.Navigate(target)

	return &Outcome{Redirect: target}, nil
}

func (h *Handler) redirectToLogin(message string) {
	h.presenter.Alert(message)
	h.presenter.Navigate(config.PageURL(h.baseURL, config.LoginPage))
}

// fail shows one alert for err and returns it. Server messages win over fallback.
func (h *Handler) fail(err error, fallback string) error {
	message := fallback
	var rej *RejectedError
	switch {
	case errors.As(err, &rej):
		message = rej.Message
	case errors.Is(err, ErrTransport):
		message = msgGenericFailure
	case errors.Is(err, ErrMalformedResponse):
		message = msgMalformed
	}

	h.logger.Warn("Submission failed", "error", err)
	h.presenter.Alert(message)
	return err
}

// once coalesces identical submissions that overlap in time
func (h *Handler) once(key string, fn func() (*Outcome, error)) (*Outcome, error) {
	v, err, shared := h.group.Do(key, func() (interface{}, error) {
		return fn()
	})

	out, _ := v.(*Outcome)
	if shared && out != nil {
		cp := *out
		cp.Shared = true
		out = &cp
	}
	return out, err
}

func submissionKey(op string, form Form) string {
	return op + "\x00" + form.Email + "\x00" + form.Password
}

func classify(err error, status int, fallback string) error {
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	var decodeErr *client.DecodeError
	if errors.As(err, &decodeErr) {
		if status >= 400 {
			return rejected(status, "", fallback)
		}
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return err
}

func rejected(status int, message, fallback string) *RejectedError {
	if message == "" {
		message = fallback
	}
	return &RejectedError{Status: status, Message: message}
}
