// Package gitmeta provides the clone orchestration for remote repositories.
package gitmeta

import (
	"context"
	"errors"

	"github.com/chainguard-dev/clog"
	gobilly "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Clone creates a new repository at the configured workdir by cloning from
// a remote URL. The URL may be any git URL (https://, ssh://, git@host:path)
// or a local path.
//
// If opts.Credential is set it is validated before any network I/O and fails
// with ErrInvalidCredential. If opts.ShallowDepth > 0 only that many
// most-recent commits are fetched and the resulting repository reports
// IsShallow() == true.
//
// Failure mapping: credential rejection by the remote returns
// ErrCloneAuthFailed, transport-level failures return ErrCloneNetwork, and a
// destination that already holds a repository returns ErrDestinationExists.
// On failure the repository metadata written to the destination is removed
// again, so a later Open cannot mistake the leftovers for a valid
// repository.
//
// The clone blocks until completion; cancel via ctx.
func Clone(ctx context.Context, remoteURL string, opts *Options) (*Repo, error) {
	if remoteURL == "" {
		return nil, errors.New("remote URL cannot be empty")
	}

	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}

	opts.applyDefaults()

	layout, err := opts.layout()
	if err != nil {
		return nil, err
	}

	if destinationOccupied(layout.scoped, opts.Bare) {
		return nil, WrapErrorf(ErrDestinationExists, "workdir %q", opts.Workdir)
	}

	authMethod, err := opts.authFor(remoteURL)
	if err != nil {
		return nil, err
	}

	cloneOpts := &git.CloneOptions{
		URL:          remoteURL,
		Auth:         authMethod,
		Depth:        opts.ShallowDepth,
		SingleBranch: opts.ShallowDepth > 0, // Single branch for shallow clones
	}

	clog.FromContext(ctx).Debugf("cloning %s into %q (depth=%d)", remoteURL, opts.Workdir, opts.ShallowDepth)

	repo, err := git.CloneContext(ctx, layout.storage, layout.worktree, cloneOpts)
	if err != nil {
		cleanupFailedClone(layout.scoped, opts.Bare)
		return nil, mapCloneError(err)
	}

	return newRepo(repo, opts)
}

// destinationOccupied reports whether the destination already holds
// repository metadata.
func destinationOccupied(scoped gobilly.Filesystem, bare bool) bool {
	marker := git.GitDirName
	if bare {
		marker = "HEAD"
	}

	_, err := scoped.Stat(marker)
	return err == nil
}

// cleanupFailedClone removes repository metadata left behind by a failed
// clone. Best effort: the clone error is what gets reported, not cleanup
// failures.
func cleanupFailedClone(scoped gobilly.Filesystem, bare bool) {
	if !bare {
		_ = util.RemoveAll(scoped, git.GitDirName)
		return
	}

	entries, err := scoped.ReadDir(".")
	if err != nil {
		return
	}
	for _, entry := range entries {
		_ = util.RemoveAll(scoped, entry.Name())
	}
}

// mapCloneError translates go-git clone failures into the package's error
// taxonomy.
func mapCloneError(err error) error {
	switch {
	case errors.Is(err, git.ErrRepositoryAlreadyExists):
		return WrapError(ErrDestinationExists, "clone destination")
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed):
		return WrapError(ErrCloneAuthFailed, err.Error())
	default:
		return WrapError(ErrCloneNetwork, err.Error())
	}
}
