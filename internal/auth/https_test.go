// Package auth provides unit tests for the HTTPS authentication provider.
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicAuthProvider_NewProviders(t *testing.T) {
	t.Run("NewBasicAuthProvider", func(t *testing.T) {
		provider := NewBasicAuthProvider("user", "pass")
		assert.NotNil(t, provider)
		assert.NotNil(t, provider.auth)
	})

	t.Run("NewTokenProvider", func(t *testing.T) {
		provider := NewTokenProvider("token123")
		assert.NotNil(t, provider)
		assert.NotNil(t, provider.auth)
		assert.Equal(t, "token", provider.auth.Username)
		assert.Equal(t, "token123", provider.auth.Password)
	})
}

func TestBasicAuthProvider_Validate(t *testing.T) {
	assert.NoError(t, NewBasicAuthProvider("user", "pass").Validate())
	assert.Error(t, NewBasicAuthProvider("", "pass").Validate())
	assert.Error(t, NewBasicAuthProvider("user", "").Validate())
}

func TestBasicAuthProvider_Method(t *testing.T) {
	tests := []struct {
		name      string
		provider  *BasicAuthProvider
		remoteURL string
		wantAuth  bool
		wantError bool
	}{
		{
			name:      "HTTPS URL returns auth",
			provider:  NewBasicAuthProvider("user", "pass"),
			remoteURL: "https://github.com/user/repo.git",
			wantAuth:  true,
			wantError: false,
		},
		{
			name:      "SSH URL returns error",
			provider:  NewBasicAuthProvider("user", "pass"),
			remoteURL: "ssh://git@github.com/user/repo.git",
			wantAuth:  false,
			wantError: true,
		},
		{
			name:      "allowed host matches",
			provider:  NewBasicAuthProvider("user", "pass").WithAllowedHosts("github.com"),
			remoteURL: "https://github.com/user/repo.git",
			wantAuth:  true,
			wantError: false,
		},
		{
			name:      "wildcard host matches",
			provider:  NewBasicAuthProvider("user", "pass").WithAllowedHosts("*.example.com"),
			remoteURL: "https://git.example.com/user/repo.git",
			wantAuth:  true,
			wantError: false,
		},
		{
			name:      "host not allowed returns nil",
			provider:  NewBasicAuthProvider("user", "pass").WithAllowedHosts("gitlab.com"),
			remoteURL: "https://github.com/user/repo.git",
			wantAuth:  false,
			wantError: false,
		},
		{
			name:      "invalid URL",
			provider:  NewBasicAuthProvider("user", "pass"),
			remoteURL: "://invalid-url",
			wantAuth:  false,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, err := tt.provider.Method(tt.remoteURL)

			if tt.wantError {
				require.Error(t, err)
				assert.Nil(t, auth)
			} else {
				require.NoError(t, err)
				if tt.wantAuth {
					assert.NotNil(t, auth)
				} else {
					assert.Nil(t, auth)
				}
			}
		})
	}
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		pattern  string
		expected bool
	}{
		{name: "exact match", host: "github.com", pattern: "github.com", expected: true},
		{name: "leading wildcard", host: "git.example.com", pattern: "*.example.com", expected: true},
		{name: "leading wildcard bare domain", host: "example.com", pattern: "*.example.com", expected: true},
		{name: "trailing wildcard", host: "gitlab.example.org", pattern: "gitlab.*", expected: true},
		{name: "no match", host: "github.com", pattern: "gitlab.com", expected: false},
		{name: "multiple wildcards rejected", host: "a.b.c", pattern: "*.b.*", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, matchesPattern(tt.host, tt.pattern))
		})
	}
}
