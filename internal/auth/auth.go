package auth

import (
	"context"
	"net/http"

	"github.com/tranphatthinh/gramctl/internal/models"
)

// Authenticator defines the authentication interface
type Authenticator interface {
	// Authenticate validates request credentials and returns the user
	Authenticate(r *http.Request) (*models.User, error)

	// Middleware returns HTTP middleware that rejects unauthenticated requests
	// and puts the user in the request context
	Middleware() func(http.Handler) http.Handler
}

type contextKey struct{}

// WithUser returns a copy of ctx carrying u
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext returns the user set by the auth middleware
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(contextKey{}).(*models.User)
	return u, ok
}
