// Package auth provides the composite authentication provider implementation.
package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// ProviderConfig configures a provider with URL pattern matching.
type ProviderConfig struct {
	// Provider is the authentication provider to use.
	Provider Provider

	// URLPatterns are URL patterns this provider should handle.
	// Supports glob patterns like "https://*.github.com" or "ssh://gitlab.*".
	// If empty, this provider will be tried for all URLs.
	URLPatterns []string
}

// CompositeProvider combines multiple authentication providers with
// fallback support. Providers are tried in order until one supplies an
// AuthMethod for the URL.
type CompositeProvider struct {
	// Providers is the ordered list of providers to try.
	Providers []ProviderConfig

	// ContinueOnError determines whether to continue trying other providers
	// if a provider returns an error, or stop immediately.
	ContinueOnError bool
}

// NewCompositeProvider creates a new composite authentication provider.
func NewCompositeProvider() *CompositeProvider {
	return &CompositeProvider{
		ContinueOnError: true,
	}
}

// AddProvider adds a provider to the fallback chain.
// URLPatterns can be used to restrict this provider to specific URL patterns.
func (c *CompositeProvider) AddProvider(provider Provider, urlPatterns ...string) *CompositeProvider {
	c.Providers = append(c.Providers, ProviderConfig{
		Provider:    provider,
		URLPatterns: urlPatterns,
	})
	return c
}

// Method returns the appropriate authentication method for the given remote URL.
// It tries each configured provider in order until one provides authentication.
//
//nolint:ireturn // transport.AuthMethod is an interface required by go-git
func (c *CompositeProvider) Method(remoteURL string) (transport.AuthMethod, error) {
	if len(c.Providers) == 0 {
		return nil, fmt.Errorf("no authentication providers configured")
	}

	parsedURL, err := url.Parse(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	var lastError error

	for i, config := range c.Providers {
		if !shouldTryProvider(parsedURL, config.URLPatterns) {
			continue
		}

		method, err := config.Provider.Method(remoteURL)
		if err != nil {
			lastError = fmt.Errorf("provider %d failed: %w", i, err)
			if !c.ContinueOnError {
				return nil, lastError
			}
			continue
		}

		if method != nil {
			return method, nil
		}
		// nil method means provider declined this URL, try next
	}

	if lastError != nil {
		return nil, lastError
	}

	// No provider could authenticate this URL
	return nil, nil
}

// shouldTryProvider checks if a provider should be tried for the given URL.
func shouldTryProvider(parsedURL *url.URL, patterns []string) bool {
	// No patterns means this provider handles all URLs
	if len(patterns) == 0 {
		return true
	}

	for _, pattern := range patterns {
		if matchesURLPattern(parsedURL, pattern) {
			return true
		}
	}
	return false
}

// matchesURLPattern checks if a URL matches a pattern.
func matchesURLPattern(parsedURL *url.URL, pattern string) bool {
	patternURL, err := url.Parse(pattern)
	if err != nil {
		// Simple string contains as fallback
		return strings.Contains(parsedURL.String(), pattern)
	}

	if patternURL.Scheme != "" && patternURL.Scheme != parsedURL.Scheme {
		return false
	}

	if patternURL.Host != "" {
		if !matchesPattern(parsedURL.Host, patternURL.Host) {
			return false
		}
	}

	return true
}
