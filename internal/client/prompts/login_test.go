package prompts

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPassword(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"trailing newline", "s3cret\n", "s3cret", false},
		{"windows newline", "s3cret\r\n", "s3cret", false},
		{"no newline", "s3cret", "s3cret", false},
		{"spaces kept", " pass word \n", " pass word ", false},
		{"only first line", "first\nsecond\n", "first", false},
		{"empty", "", "", true},
		{"blank line", "\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadPassword(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfirm(t *testing.T) {
	orig := stdin
	defer func() { stdin = orig }()

	for input, want := range map[string]bool{
		"y\n":   true,
		"YES\n": true,
		"n\n":   false,
		"\n":    false,
		"":      false,
	} {
		stdin = bufio.NewReader(strings.NewReader(input))
		assert.Equal(t, want, Confirm("Replace stored credentials?"), "input %q", input)
	}
}

func TestReadPassword_StdinSharesPromptReader(t *testing.T) {
	restore := SetInput(strings.NewReader("secret\ny\n"))
	defer restore()

	password, err := ReadPassword(os.Stdin)
	require.NoError(t, err)
	assert.Equal(t, "secret", password)

	assert.True(t, Confirm("Replace stored credentials?"), "answer after the password is still readable")
}

func TestPromptPassword_NonTerminal(t *testing.T) {
	restore := SetInput(strings.NewReader("first\nsecond\n"))
	defer restore()

	assert.False(t, Interactive())

	got, err := PromptPassword("Password")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	_, err = PromptNewPassword()
	assert.Error(t, err, "confirmation is missing")
}
