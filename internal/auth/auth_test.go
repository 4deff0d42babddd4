package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranphatthinh/gramctl/internal/logging"
	"github.com/tranphatthinh/gramctl/internal/models"
	"github.com/tranphatthinh/gramctl/internal/storage"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret"))
}

func TestNewRefreshToken(t *testing.T) {
	a, err := NewRefreshToken()
	require.NoError(t, err)
	b, err := NewRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Regexp(t, "^[0-9a-f]+$", a)
	assert.NotEqual(t, a, b)
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0)
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return now }

	token, err := issuer.Issue(42, "a@b.c")
	require.NoError(t, err)

	id, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	t.Run("claims", func(t *testing.T) {
		claims := jwt.MapClaims{}
		_, _, err := jwt.NewParser().ParseUnverified(token, claims)
		require.NoError(t, err)
		assert.EqualValues(t, 42, claims["user_id"])
		assert.Equal(t, "a@b.c", claims["sub"])
		assert.EqualValues(t, now.Add(DefaultAccessTokenTTL).Unix(), claims["exp"])
	})

	t.Run("expired", func(t *testing.T) {
		issuer.now = func() time.Time { return now.Add(DefaultAccessTokenTTL + time.Second) }
		defer func() { issuer.now = func() time.Time { return now } }()

		_, err := issuer.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("other", time.Minute)
		other.now = issuer.now
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Verify("not.a.jwt")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("no exp", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 42}).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = issuer.Verify(unsigned)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func newBearer(t *testing.T) (*BearerAuth, *TokenIssuer, *models.User) {
	t.Helper()
	store := storage.NewMemoryStorage(logging.Discard())
	user := models.NewUser("a@b.c", "h")
	require.NoError(t, store.CreateUser(context.Background(), user))

	issuer := NewTokenIssuer("secret", time.Minute)
	return NewBearerAuth(issuer, store, logging.Discard()), issuer, user
}

func TestBearerAuth_Middleware(t *testing.T) {
	bearer, issuer, user := newBearer(t)

	valid, err := issuer.Issue(user.ID, user.Email)
	require.NoError(t, err)
	ghost, err := issuer.Issue(user.ID+1, "ghost@b.c")
	require.NoError(t, err)

	var seen *models.User
	handler := bearer.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"no header", "", http.StatusUnauthorized, "Thiếu hoặc sai định dạng token"},
		{"basic scheme", "Basic YTpi", http.StatusUnauthorized, "Thiếu hoặc sai định dạng token"},
		{"invalid token", "Bearer nope", http.StatusForbidden, "Token không hợp lệ"},
		{"unknown user", "Bearer " + ghost, http.StatusForbidden, "Token không hợp lệ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, user.ID, seen.ID)
				return
			}
			assert.Nil(t, seen)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestBearerAuth_Expired(t *testing.T) {
	bearer, issuer, user := newBearer(t)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := issuer.Issue(user.ID, user.Email)
	require.NoError(t, err)
	issuer.now = time.Now

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	_, err = bearer.Authenticate(req)
	assert.ErrorIs(t, err, ErrTokenExpired)

	rec := httptest.NewRecorder()
	bearer.Middleware()(http.NotFoundHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token đã hết hạn")
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
}
