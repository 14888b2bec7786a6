// Package gitmeta provides remote branch head listing.
package gitmeta

import (
	"context"
	"errors"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// RemoteBranchHeads lists the branch heads advertised by a remote, mapping
// short branch names to full commit hashes. With no names given every
// advertised branch is returned; otherwise the result is restricted to the
// named branches.
//
// The listing contacts the remote and uses the credential configured on the
// handle's options. A remote that is not configured fails with
// ErrStoreAccess; rejected credentials fail with ErrCloneAuthFailed and
// transport failures with ErrCloneNetwork.
func (r *Repo) RemoteBranchHeads(ctx context.Context, remoteName string, only ...string) (map[string]string, error) {
	if remoteName == "" {
		remoteName = DefaultRemoteName
	}

	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return nil, WrapErrorf(ErrStoreAccess, "remote %q is not configured", remoteName)
		}
		return nil, WrapError(ErrStoreAccess, err.Error())
	}

	var remoteURL string
	if urls := remote.Config().URLs; len(urls) > 0 {
		remoteURL = urls[0]
	}

	authMethod, err := r.options.authFor(remoteURL)
	if err != nil {
		return nil, err
	}

	clog.FromContext(ctx).Debugf("listing branch heads of remote %q (%s)", remoteName, remoteURL)

	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: authMethod})
	if err != nil {
		return nil, mapListError(err)
	}

	include := make(map[string]struct{}, len(only))
	for _, name := range only {
		include[name] = struct{}{}
	}

	heads := make(map[string]string)
	for _, ref := range refs {
		if !ref.Name().IsBranch() {
			continue
		}
		name := strings.TrimPrefix(ref.Name().String(), "refs/heads/")
		if len(include) > 0 {
			if _, ok := include[name]; !ok {
				continue
			}
		}
		heads[name] = ref.Hash().String()
	}

	return heads, nil
}

// NewCommitsExist reports whether the remote's head of a branch differs
// from the local branch head, meaning a fetch would bring in commits the
// local repository has not seen (or the local branch carries unpushed
// work). An empty remote name defaults to origin; an empty branch name uses
// the currently checked-out branch.
//
// The check contacts the remote. A branch missing locally or on the remote
// fails with ErrBranchNotFound.
func (r *Repo) NewCommitsExist(ctx context.Context, remoteName, branchName string) (bool, error) {
	if branchName == "" {
		current, err := r.CurrentBranch(ctx)
		if err != nil {
			return false, err
		}
		if current == "" {
			return false, WrapError(ErrBranchNotFound, "no branch is checked out")
		}
		branchName = current
	}

	localRef, err := r.repo.Reference(plumbing.NewBranchReferenceName(branchName), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, WrapErrorf(ErrBranchNotFound, "branch %q", branchName)
		}
		return false, WrapError(ErrStoreAccess, err.Error())
	}

	heads, err := r.RemoteBranchHeads(ctx, remoteName, branchName)
	if err != nil {
		return false, err
	}

	remoteHead, ok := heads[branchName]
	if !ok {
		return false, WrapErrorf(ErrBranchNotFound, "remote has no branch %q", branchName)
	}

	return remoteHead != localRef.Hash().String(), nil
}

// mapListError translates remote listing failures into the package's error
// taxonomy.
func mapListError(err error) error {
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed):
		return WrapError(ErrCloneAuthFailed, err.Error())
	default:
		return WrapError(ErrCloneNetwork, err.Error())
	}
}
