package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranphatthinh/gramctl/internal/logging"
)

func TestClient_PostJSON(t *testing.T) {
	var gotBody map[string]string
	var gotHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "tok", time.Second, logging.Discard())

	var out struct {
		Message string `json:"message"`
	}
	status, err := c.PostJSON(context.Background(), "/register", map[string]string{"email": "a@b.c"}, &out)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "ok", out.Message)
	assert.Equal(t, "a@b.c", gotBody["email"])
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "Bearer tok", gotHeaders.Get("Authorization"))
}

func TestClient_NoTokenNoAuthorizationHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", time.Second, nil)
	_, err := c.PostJSON(context.Background(), "/login", map[string]string{}, &map[string]interface{}{})
	assert.NoError(t, err)
}

func TestClient_DecodesErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad credentials"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", time.Second, logging.Discard())

	var out struct {
		Error string `json:"error"`
	}
	status, err := c.PostJSON(context.Background(), "/login", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "bad credentials", out.Error)
}

func TestClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>Internal Server Error</html>`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", time.Second, logging.Discard())

	var out map[string]interface{}
	status, err := c.PostJSON(context.Background(), "/login", nil, &out)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, http.StatusInternalServerError, decodeErr.Status)
	assert.Contains(t, decodeErr.Body, "Internal Server Error")
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url, "", time.Second, logging.Discard())
	_, err := c.PostJSON(context.Background(), "/login", nil, nil)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.MethodPost, transportErr.Method)
	assert.Equal(t, url+"/login", transportErr.URL)
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(server.URL, "", 5*time.Second, logging.Discard())
	_, err := c.PostJSON(ctx, "/login", nil, nil)

	assert.ErrorIs(t, err, context.Canceled)
}
