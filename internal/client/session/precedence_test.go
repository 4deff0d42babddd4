package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveToken(t *testing.T) {
	stored := NewMemoryStore()
	require.NoError(t, stored.Save(&Credentials{URL: "http://stored", AccessToken: "stored-token"}))

	tests := []struct {
		name      string
		flagToken string
		envToken  string
		store     Store
		want      string
	}{
		{
			name:      "flag takes priority over env var",
			flagToken: "flag-token",
			envToken:  "env-token",
			store:     stored,
			want:      "flag-token",
		},
		{
			name:     "env var takes priority over stored credentials",
			envToken: "env-token",
			store:    stored,
			want:     "env-token",
		},
		{
			name:  "falls back to stored credentials",
			store: stored,
			want:  "stored-token",
		},
		{
			name:  "empty when nothing is configured",
			store: NewMemoryStore(),
			want:  "",
		},
		{
			name: "nil store",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(TokenEnvVar, tt.envToken)

			got, err := ResolveToken(tt.flagToken, tt.store)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoredURL(t *testing.T) {
	store := NewMemoryStore()
	assert.Equal(t, "", StoredURL(store))

	require.NoError(t, store.Save(&Credentials{URL: "http://stored", AccessToken: "t"}))
	assert.Equal(t, "http://stored", StoredURL(store))
	assert.Equal(t, "", StoredURL(nil))
}
