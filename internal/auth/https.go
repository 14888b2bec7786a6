// Package auth provides the HTTPS authentication provider implementation.
package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// BasicAuthProvider authenticates HTTPS remotes with username/password.
// It wraps go-git's http.BasicAuth with URL pattern matching.
type BasicAuthProvider struct {
	auth *http.BasicAuth

	// AllowedHosts restricts authentication to specific host patterns.
	// If empty, authentication is allowed for all HTTPS URLs.
	// Supports glob patterns like "*.github.com" or "gitlab.*".
	AllowedHosts []string
}

// NewBasicAuthProvider creates a new HTTPS authentication provider.
// For GitHub/GitLab OAuth tokens, pass the token as the password.
func NewBasicAuthProvider(username, password string) *BasicAuthProvider {
	return &BasicAuthProvider{
		auth: &http.BasicAuth{
			Username: username,
			Password: password,
		},
	}
}

// NewTokenProvider creates an HTTPS provider for token authentication.
// Most git providers (GitHub, GitLab, Bitbucket) use the token as password.
func NewTokenProvider(token string) *BasicAuthProvider {
	return &BasicAuthProvider{
		auth: &http.BasicAuth{
			Username: "token", // Some providers need a username
			Password: token,
		},
	}
}

// WithAllowedHosts sets the allowed hosts for this provider.
// Only URLs matching these patterns will be authenticated.
func (p *BasicAuthProvider) WithAllowedHosts(hosts ...string) *BasicAuthProvider {
	p.AllowedHosts = hosts
	return p
}

// Validate checks that both username and password are present.
func (p *BasicAuthProvider) Validate() error {
	if p.auth == nil || p.auth.Username == "" || p.auth.Password == "" {
		return fmt.Errorf("username and password must both be non-empty")
	}
	return nil
}

// Method returns the authentication method for the given remote URL.
// Returns nil if the URL doesn't match allowed patterns.
//
//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (p *BasicAuthProvider) Method(remoteURL string) (transport.AuthMethod, error) {
	parsedURL, err := url.Parse(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if parsedURL.Scheme != "https" && parsedURL.Scheme != "http" {
		return nil, fmt.Errorf("basic auth provider only supports http(s) URLs, got %s", parsedURL.Scheme)
	}

	if len(p.AllowedHosts) > 0 && !hostAllowed(parsedURL.Host, p.AllowedHosts) {
		return nil, nil // No auth for restricted hosts
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p.auth, nil
}

// matchesPattern checks if a host matches a pattern with "*" wildcards.
func matchesPattern(host, pattern string) bool {
	// Exact match
	if host == pattern {
		return true
	}

	// Only support patterns with exactly one "*"
	if strings.Count(pattern, "*") != 1 {
		return false
	}

	if strings.HasPrefix(pattern, "*.") {
		suffix := strings.TrimPrefix(pattern, "*.")
		return strings.HasSuffix(host, suffix) || host == suffix
	}

	if strings.HasSuffix(pattern, ".*") {
		prefix := strings.TrimSuffix(pattern, ".*")
		return strings.HasPrefix(host, prefix+".")
	}

	return false
}
