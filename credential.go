// Package gitmeta provides credential handling for remote operations.
package gitmeta

import (
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/forgelabs/gitmeta/internal/auth"
)

// credentialKind discriminates the closed set of credential variants.
// New auth kinds extend this set; there is no open provider hierarchy here.
type credentialKind int

const (
	credNone credentialKind = iota
	credSSHKey
	credUserPass
)

// Credential holds authentication material for a remote repository.
// It is an immutable value: it carries no live connection and is consumed
// by clone and remote listing operations. Construct one with
// NewSSHKeyCredential or NewUserPassCredential.
type Credential struct {
	kind credentialKind

	privateKeyPath string
	publicKeyPath  string
	passphrase     string

	username string
	password string
}

// NewSSHKeyCredential builds a credential from an SSH key pair.
// publicKeyPath and passphrase may be empty; a "~/" prefix on either key
// path is expanded against the user home directory.
func NewSSHKeyCredential(privateKeyPath, publicKeyPath, passphrase string) *Credential {
	return &Credential{
		kind:           credSSHKey,
		privateKeyPath: privateKeyPath,
		publicKeyPath:  publicKeyPath,
		passphrase:     passphrase,
	}
}

// NewUserPassCredential builds a username/password credential.
// For token-based providers pass the token as the password.
func NewUserPassCredential(username, password string) *Credential {
	return &Credential{
		kind:     credUserPass,
		username: username,
		password: password,
	}
}

// Validate checks the credential material before use: the SSH private key
// must exist and be readable, and username/password must both be non-empty.
// It fails with ErrInvalidCredential and performs no network I/O.
func (c *Credential) Validate() error {
	switch c.kind {
	case credSSHKey:
		if err := c.sshProvider().Validate(); err != nil {
			return WrapError(ErrInvalidCredential, err.Error())
		}
		return nil
	case credUserPass:
		if c.username == "" || c.password == "" {
			return WrapError(ErrInvalidCredential, "username and password must both be non-empty")
		}
		return nil
	default:
		return WrapError(ErrInvalidCredential, "no credential material configured")
	}
}

// authMethod validates the credential and converts it into the go-git auth
// method appropriate for the remote URL.
//
//nolint:ireturn // transport.AuthMethod is the interface go-git consumes
func (c *Credential) authMethod(remoteURL string) (transport.AuthMethod, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.kind {
	case credSSHKey:
		method, err := c.sshProvider().Method(remoteURL)
		if err != nil {
			return nil, WrapError(ErrInvalidCredential, err.Error())
		}
		return method, nil
	case credUserPass:
		method, err := auth.NewBasicAuthProvider(c.username, c.password).Method(remoteURL)
		if err != nil {
			return nil, WrapError(ErrInvalidCredential, err.Error())
		}
		return method, nil
	default:
		return nil, WrapError(ErrInvalidCredential, "no credential material configured")
	}
}

func (c *Credential) sshProvider() *auth.SSHKeyProvider {
	p := auth.NewSSHKeyProvider(c.privateKeyPath, c.passphrase)
	p.PublicKeyPath = c.publicKeyPath
	return p
}
