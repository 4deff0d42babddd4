package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tranphatthinh/gramctl/internal/apierrors"
	"github.com/tranphatthinh/gramctl/internal/models"
	"github.com/tranphatthinh/gramctl/internal/storage"
)

var (
	// ErrMissingToken is returned when the Authorization header is not "Bearer <token>"
	ErrMissingToken = errors.New("missing or malformed bearer token")

	// ErrUnknownUser is returned for a valid token whose user no longer exists
	ErrUnknownUser = errors.New("token user not found")
)

// BearerAuth authenticates requests carrying an access token
type BearerAuth struct {
	issuer *TokenIssuer
	store  storage.Store
	logger *slog.Logger
}

// NewBearerAuth creates a bearer token authenticator
func NewBearerAuth(issuer *TokenIssuer, store storage.Store, logger *slog.Logger) *BearerAuth {
	return &BearerAuth{
		issuer: issuer,
		store:  store,
		logger: logger,
	}
}

// Authenticate validates the Authorization header
func (a *BearerAuth) Authenticate(r *http.Request) (*models.User, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}

	userID, err := a.issuer.Verify(strings.TrimSpace(token))
	if err != nil {
		a.logger.Warn("Authentication failed",
			"error", err,
			"source_ip", r.RemoteAddr)
		return nil, err
	}

	user, err := a.store.GetUserByID(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		a.logger.Warn("Authentication failed: user not found",
			"user_id", userID,
			"source_ip", r.RemoteAddr)
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Authentication successful",
		"user_id", userID,
		"source_ip", r.RemoteAddr)

	return user, nil
}

// Middleware returns bearer auth middleware
func (a *BearerAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.Authenticate(r)
			if err != nil {
				message, status := errorResponse(err)
				if status == http.StatusUnauthorized {
					w.Header().Set("WWW-Authenticate", `Bearer realm="gram-stub"`)
				}
				apierrors.WriteError(w, message, status)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func errorResponse(err error) (string, int) {
	switch {
	case errors.Is(err, ErrMissingToken):
		return apierrors.MsgMissingToken, http.StatusUnauthorized
	case errors.Is(err, ErrTokenExpired):
		return apierrors.MsgExpiredToken, http.StatusUnauthorized
	case errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrUnknownUser):
		return apierrors.MsgInvalidToken, http.StatusForbidden
	default:
		return apierrors.MapStorageError(err)
	}
}
