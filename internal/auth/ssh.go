// Package auth provides the SSH authentication provider implementation.
package auth

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	gossh "golang.org/x/crypto/ssh"
)

// SSHKeyProvider authenticates with a private key file. It wraps go-git's
// public-key auth with URL scheme checks and optional host restrictions.
type SSHKeyProvider struct {
	// PrivateKeyPath is the path to the SSH private key file.
	// A "~/" prefix is expanded against the user home directory.
	PrivateKeyPath string

	// PublicKeyPath optionally points at the matching public key.
	// go-git derives the public key from the private key, so this is only
	// kept for validation of caller-supplied pairs.
	PublicKeyPath string

	// Passphrase for encrypted private keys.
	Passphrase string

	// Username for SSH authentication (defaults to "git").
	Username string

	// HostKeyCallback for host key verification (optional).
	HostKeyCallback gossh.HostKeyCallback

	// AllowedHosts restricts authentication to specific host patterns.
	// If empty, authentication is allowed for all SSH URLs.
	// Supports glob patterns like "*.github.com" or "gitlab.*".
	AllowedHosts []string
}

// NewSSHKeyProvider creates an SSH provider using a private key file.
func NewSSHKeyProvider(keyPath, passphrase string) *SSHKeyProvider {
	return &SSHKeyProvider{
		PrivateKeyPath: keyPath,
		Passphrase:     passphrase,
		Username:       "git",
	}
}

// WithUsername sets the SSH username (default is "git").
func (p *SSHKeyProvider) WithUsername(username string) *SSHKeyProvider {
	p.Username = username
	return p
}

// WithHostKeyCallback sets the host key verification callback.
func (p *SSHKeyProvider) WithHostKeyCallback(callback gossh.HostKeyCallback) *SSHKeyProvider {
	p.HostKeyCallback = callback
	return p
}

// WithAllowedHosts sets the allowed hosts for this provider.
func (p *SSHKeyProvider) WithAllowedHosts(hosts ...string) *SSHKeyProvider {
	p.AllowedHosts = hosts
	return p
}

// Validate checks that the private key file exists and is readable.
func (p *SSHKeyProvider) Validate() error {
	keyPath := ExpandHome(p.PrivateKeyPath)
	if keyPath == "" {
		return fmt.Errorf("no SSH private key path configured")
	}

	f, err := os.Open(keyPath)
	if err != nil {
		return fmt.Errorf("SSH private key %q is not readable: %w", keyPath, err)
	}
	_ = f.Close()

	if p.PublicKeyPath != "" {
		if _, err := os.Stat(ExpandHome(p.PublicKeyPath)); err != nil {
			return fmt.Errorf("SSH public key %q is not readable: %w", p.PublicKeyPath, err)
		}
	}

	return nil
}

// Method returns the authentication method for the given remote URL.
// Returns nil if the URL doesn't match allowed patterns.
//
//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (p *SSHKeyProvider) Method(remoteURL string) (transport.AuthMethod, error) {
	host, scheme, err := extractSSHHost(remoteURL)
	if err != nil {
		return nil, err
	}

	if !isSupportedScheme(scheme) {
		return nil, fmt.Errorf("SSH auth provider only supports SSH URLs, got %s", scheme)
	}

	if len(p.AllowedHosts) > 0 && host != "" && !hostAllowed(host, p.AllowedHosts) {
		return nil, nil // No auth for restricted hosts
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	username := p.Username
	if username == "" {
		username = "git"
	}

	auth, err := ssh.NewPublicKeysFromFile(username, ExpandHome(p.PrivateKeyPath), p.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key from file: %w", err)
	}
	if p.HostKeyCallback != nil {
		auth.HostKeyCallback = p.HostKeyCallback
	}
	return auth, nil
}

// ExpandHome expands a leading "~/" in path against the user home directory.
func ExpandHome(path string) string {
	if path == "~" {
		return xdg.Home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(xdg.Home, path[2:])
	}
	return path
}

func extractSSHHost(remoteURL string) (string, string, error) {
	// Special handling for git@host:path style URLs
	if strings.HasPrefix(remoteURL, "git@") && !strings.HasPrefix(remoteURL, "git://") {
		parts := strings.SplitN(strings.TrimPrefix(remoteURL, "git@"), ":", 2)
		if len(parts) > 0 {
			return parts[0], "ssh", nil
		}
		return "", "", fmt.Errorf("invalid SSH URL: %s", remoteURL)
	}

	parsedURL, err := url.Parse(remoteURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %w", err)
	}
	return parsedURL.Host, parsedURL.Scheme, nil
}

func isSupportedScheme(s string) bool {
	return s == "ssh" || s == "git" || s == "git+ssh"
}

// hostAllowed checks if the given host matches any of the allowed host patterns.
func hostAllowed(host string, patterns []string) bool {
	// Remove port if present
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	for _, pattern := range patterns {
		if matchesPattern(host, pattern) {
			return true
		}
	}
	return false
}
