package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/tranphatthinh/gramctl/internal/apierrors"
	"github.com/tranphatthinh/gramctl/internal/auth"
	"github.com/tranphatthinh/gramctl/internal/models"
	"github.com/tranphatthinh/gramctl/internal/storage"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

// AuthHandler handles registration, login, token refresh and logout
type AuthHandler struct {
	store   storage.Store
	issuer  *auth.TokenIssuer
	metrics *MetricsHandler
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store storage.Store, issuer *auth.TokenIssuer, metrics *MetricsHandler, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		store:   store,
		issuer:  issuer,
		metrics: metrics,
		logger:  logger,
	}
}

// CredentialsRequest is the body of /register and /login
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of /refresh-token and /logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by /register, /login and /refresh-token
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Email        string `json:"email,omitempty"`
}

// MessageResponse is returned by /logout
type MessageResponse struct {
	Message string `json:"message"`
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		h.metrics.IncrementAuthEvent(EventValidation)
		apierrors.WriteError(w, apierrors.MsgNotJSON, http.StatusUnsupportedMediaType)
		return
	}

	var req CredentialsRequest
	if !h.decode(w, r, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		h.metrics.IncrementAuthEvent(EventValidation)
		apierrors.WriteError(w, apierrors.MsgMissingCredentials, http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Failed to hash password", "error", err)
		apierrors.WriteError(w, apierrors.MsgInternal, http.StatusInternalServerError)
		return
	}

	user := models.NewUser(email, hash)
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			h.metrics.IncrementAuthEvent(EventValidation)
			h.logger.Info("Registration rejected: email taken", "email", email)
		}
		message, status := apierrors.MapStorageError(err)
		apierrors.WriteError(w, message, status)
		return
	}

	resp, ok := h.issueTokens(w, r, user)
	if !ok {
		return
	}

	h.metrics.IncrementAuthEvent(EventRegister)
	h.logger.Info("User registered", "user_id", user.ID, "email", email)

	// The registration reply carries no email; clients only get tokens
	resp.Email = ""
	apierrors.WriteJSON(w, http.StatusCreated, resp)
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		message, status := apierrors.MapStorageError(err)
		apierrors.WriteError(w, message, status)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.metrics.IncrementAuthEvent(EventLoginFailure)
		h.logger.Warn("Login failed",
			"email", req.Email,
			"source_ip", r.RemoteAddr)
		apierrors.WriteError(w, apierrors.MsgBadCredentials, http.StatusUnauthorized)
		return
	}

	resp, ok := h.issueTokens(w, r, user)
	if !ok {
		return
	}

	h.metrics.IncrementAuthEvent(EventLoginSuccess)
	h.logger.Info("User logged in", "user_id", user.ID)

	apierrors.WriteJSON(w, http.StatusOK, resp)
}

// RefreshToken handles POST /refresh-token.
// The refresh token stays valid until the next login or a logout.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.store.GetUserByRefreshToken(r.Context(), req.RefreshToken)
	if errors.Is(err, storage.ErrNotFound) {
		h.metrics.IncrementAuthEvent(EventRefreshFailure)
		apierrors.WriteError(w, apierrors.MsgBadRefreshToken, http.StatusUnauthorized)
		return
	}
	if err != nil {
		message, status := apierrors.MapStorageError(err)
		apierrors.WriteError(w, message, status)
		return
	}

	access, err := h.issuer.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.Error("Failed to issue access token", "error", err)
		apierrors.WriteError(w, apierrors.MsgInternal, http.StatusInternalServerError)
		return
	}

	h.metrics.IncrementAuthEvent(EventRefresh)
	apierrors.WriteJSON(w, http.StatusOK, TokenResponse{AccessToken: access, Email: user.Email})
}

// Logout handles POST /logout. Unknown tokens are ignored.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.store.GetUserByRefreshToken(r.Context(), req.RefreshToken)
	switch {
	case err == nil:
		if err := h.store.SetRefreshToken(r.Context(), user.ID, ""); err != nil {
			message, status := apierrors.MapStorageError(err)
			apierrors.WriteError(w, message, status)
			return
		}
		h.metrics.IncrementAuthEvent(EventLogout)
		h.logger.Info("User logged out", "user_id", user.ID)
	case !errors.Is(err, storage.ErrNotFound):
		message, status := apierrors.MapStorageError(err)
		apierrors.WriteError(w, message, status)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// issueTokens creates an access token and a new refresh token for user
func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, user *models.User) (*TokenResponse, bool) {
	access, err := h.issuer.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.Error("Failed to issue access token", "error", err)
		apierrors.WriteError(w, apierrors.MsgInternal, http.StatusInternalServerError)
		return nil, false
	}

	refresh, err := auth.NewRefreshToken()
	if err != nil {
		h.logger.Error("Failed to generate refresh token", "error", err)
		apierrors.WriteError(w, apierrors.MsgInternal, http.StatusInternalServerError)
		return nil, false
	}

	if err := h.store.SetRefreshToken(r.Context(), user.ID, refresh); err != nil {
		message, status := apierrors.MapStorageError(err)
		apierrors.WriteError(w, message, status)
		return nil, false
	}

	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Email:        user.Email,
	}, true
}

// decode reads a JSON body into v, writing a 400 on failure
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := decodeJSON(w, r, v); err != nil {
		h.metrics.IncrementAuthEvent(EventValidation)
		h.logger.Debug("Invalid request body", "error", err, "endpoint", r.URL.Path)
		apierrors.WriteError(w, apierrors.MsgInvalidBody, http.StatusBadRequest)
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
