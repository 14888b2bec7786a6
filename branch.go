// Package gitmeta provides branch resolution and remote-tracking
// reconciliation.
package gitmeta

import (
	"context"
	"errors"
	"sort"

	"github.com/chainguard-dev/clog"
	"github.com/go-git/go-git/v5/plumbing"
)

// BranchInfo describes a local branch and its remote-tracking state.
type BranchInfo struct {
	// Name is the short branch name, empty on a detached HEAD.
	Name string

	// Upstream is the short name of the remote-tracking branch this branch
	// reconciles against ("origin/main"), or empty when no tracking branch
	// could be determined.
	Upstream string

	// IsShallow reports whether the repository history is truncated.
	IsShallow bool
}

// CurrentBranch returns the short name of the currently checked-out branch.
// It returns empty when HEAD is detached, and also on a freshly initialized
// repository whose HEAD points at a branch with no commits yet.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", WrapError(ErrStoreAccess, err.Error())
	}

	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// ResolveBranch resolves a branch to its metadata, reconciling it against
// its remote-tracking branch.
//
// With an empty name the currently checked-out branch is used; on a
// detached HEAD this yields a BranchInfo with an empty Name and no
// Upstream. An explicitly named branch that does not exist fails with
// ErrBranchNotFound.
//
// The tracking branch is determined from the branch configuration first.
// When the configuration is silent (or points at a remote-tracking ref that
// does not exist locally) the remotes are scanned for a branch of the same
// name, origin first and the rest in lexical order.
func (r *Repo) ResolveBranch(ctx context.Context, name string) (*BranchInfo, error) {
	shallow, err := r.IsShallow(ctx)
	if err != nil {
		return nil, err
	}

	if name == "" {
		current, err := r.CurrentBranch(ctx)
		if err != nil {
			return nil, err
		}
		if current == "" {
			return &BranchInfo{IsShallow: shallow}, nil
		}
		name = current
	} else {
		_, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
		if err != nil {
			if errors.Is(err, plumbing.ErrReferenceNotFound) {
				return nil, WrapErrorf(ErrBranchNotFound, "branch %q", name)
			}
			return nil, WrapError(ErrStoreAccess, err.Error())
		}
	}

	upstream, err := r.trackingBranch(ctx, name)
	if err != nil {
		return nil, err
	}

	return &BranchInfo{
		Name:      name,
		Upstream:  upstream,
		IsShallow: shallow,
	}, nil
}

// IsShallow reports whether the repository history is truncated by a
// shallow clone or fetch.
func (r *Repo) IsShallow(ctx context.Context) (bool, error) {
	commits, err := r.repo.Storer.Shallow()
	if err != nil {
		return false, WrapError(ErrStoreAccess, "failed to read shallow state")
	}
	return len(commits) > 0, nil
}

// trackingBranch resolves the remote-tracking branch for a local branch.
// Returns "" when no tracking branch exists.
func (r *Repo) trackingBranch(ctx context.Context, name string) (string, error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return "", WrapError(ErrStoreAccess, "failed to read repository configuration")
	}

	if branch, ok := cfg.Branches[name]; ok && branch.Remote != "" && branch.Merge != "" {
		candidate := plumbing.NewRemoteReferenceName(branch.Remote, branch.Merge.Short())
		if _, err := r.repo.Reference(candidate, true); err == nil {
			return branch.Remote + "/" + branch.Merge.Short(), nil
		}
		clog.FromContext(ctx).Debugf("configured upstream %s for branch %q has no local ref", candidate, name)
	}

	for _, remote := range orderedRemoteNames(cfg.Remotes) {
		candidate := plumbing.NewRemoteReferenceName(remote, name)
		if _, err := r.repo.Reference(candidate, true); err == nil {
			return remote + "/" + name, nil
		}
	}

	return "", nil
}

// orderedRemoteNames sorts remote names with origin first and the rest
// lexically, so fallback tracking resolution is deterministic.
func orderedRemoteNames[T any](remotes map[string]T) []string {
	names := make([]string, 0, len(remotes))
	for name := range remotes {
		if name == DefaultRemoteName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if _, ok := remotes[DefaultRemoteName]; ok {
		names = append([]string{DefaultRemoteName}, names...)
	}
	return names
}
