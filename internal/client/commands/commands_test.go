package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranphatthinh/gramctl/internal/client/output"
	"github.com/tranphatthinh/gramctl/internal/client/session"
)

func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	origOut, origErr := output.Stdout, output.Stderr
	output.Stdout, output.Stderr = stdout, stderr
	t.Cleanup(func() { output.Stdout, output.Stderr = origOut, origErr })
	return stdout, stderr
}

func TestReadText(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "text.txt")
	require.NoError(t, os.WriteFile(file, []byte("from file"), 0600))

	t.Run("args are joined", func(t *testing.T) {
		text, err := readText([]string{"toi", "di", "hoc"}, "", strings.NewReader("ignored"))
		require.NoError(t, err)
		assert.Equal(t, "toi di hoc", text)
	})

	t.Run("file", func(t *testing.T) {
		text, err := readText(nil, file, strings.NewReader("ignored"))
		require.NoError(t, err)
		assert.Equal(t, "from file", text)
	})

	t.Run("stdin", func(t *testing.T) {
		text, err := readText(nil, "", strings.NewReader("from stdin\n"))
		require.NoError(t, err)
		assert.Equal(t, "from stdin\n", text)
	})

	t.Run("args and file conflict", func(t *testing.T) {
		_, err := readText([]string{"x"}, file, nil)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readText(nil, filepath.Join(dir, "nope"), nil)
		assert.Error(t, err)
	})
}

func TestPresenter(t *testing.T) {
	var opened []string
	orig := openURL
	openURL = func(url string) error {
		opened = append(opened, url)
		return nil
	}
	t.Cleanup(func() { openURL = orig })

	t.Run("text mode", func(t *testing.T) {
		opened = nil
		stdout, stderr := captureOutput(t)
		p := newPresenter(false, false)

		p.Notice("Registration successful!")
		p.Alert("Login failed!")
		p.Navigate("http://127.0.0.1:5000/check-grammar")

		assert.Contains(t, stdout.String(), "Registration successful!")
		assert.Contains(t, stdout.String(), "http://127.0.0.1:5000/check-grammar")
		assert.Contains(t, stderr.String(), "Login failed!")
		assert.Empty(t, opened)
	})

	t.Run("json mode keeps stdout clean", func(t *testing.T) {
		opened = nil
		stdout, stderr := captureOutput(t)
		p := newPresenter(true, false)

		p.Notice("Registration successful!")
		p.Navigate("http://127.0.0.1:5000/login")
		p.Alert("Registration failed")

		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "Registration failed")
	})

	t.Run("open", func(t *testing.T) {
		opened = nil
		captureOutput(t)
		newPresenter(false, true).Navigate("http://127.0.0.1:5000/login")
		assert.Equal(t, []string{"http://127.0.0.1:5000/login"}, opened)
	})

	t.Run("open failure is a warning", func(t *testing.T) {
		openURL = func(string) error { return errors.New("no display") }
		_, stderr := captureOutput(t)
		newPresenter(false, true).Navigate("http://127.0.0.1:5000/login")
		assert.Contains(t, stderr.String(), "no display")
	})
}

func TestDescribe(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "a@b.c",
		"user_id": 7,
		"exp":     exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	info := describe(&session.Credentials{
		URL:         "http://127.0.0.1:5000",
		AccessToken: token,
		SavedAt:     time.Now(),
	})

	assert.Equal(t, "http://127.0.0.1:5000", info.Server)
	assert.Equal(t, "a@b.c", info.Email)
	assert.Equal(t, "7", info.UserID)
	require.NotNil(t, info.ExpiresAt)
	assert.True(t, exp.Equal(*info.ExpiresAt))
	assert.NotNil(t, info.SavedAt)

	opaque := describe(&session.Credentials{URL: "http://x", Email: "e@x", AccessToken: "opaque"})
	assert.Equal(t, "e@x", opaque.Email)
	assert.Empty(t, opaque.UserID)
	assert.Nil(t, opaque.ExpiresAt)
	assert.Nil(t, opaque.SavedAt)
}
