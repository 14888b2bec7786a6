// Package gitmeta provides changed-file computation between commits.
package gitmeta

import (
	"context"
	"sort"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ChangedFilesBetween computes the set of file paths that differ between
// two commits. Paths are slash-separated, relative to the repository root,
// deduplicated (a rename contributes both its old and new path), and sorted.
// The result is symmetric in from and to.
//
// Optional filters restrict the result; a path is kept when every filter
// accepts its change.
func (r *Repo) ChangedFilesBetween(ctx context.Context, from, to *CommitMeta, filters ...ChangeFilter) ([]string, error) {
	fromTree, err := r.treeForCommit(from)
	if err != nil {
		return nil, err
	}

	toTree, err := r.treeForCommit(to)
	if err != nil {
		return nil, err
	}

	return r.changedPaths(ctx, fromTree, toTree, filters)
}

// ChangedFilesAt computes the set of file paths the commit itself changed,
// relative to its first parent. For a root commit every file it introduced
// is reported.
func (r *Repo) ChangedFilesAt(ctx context.Context, c *CommitMeta, filters ...ChangeFilter) ([]string, error) {
	toTree, err := r.treeForCommit(c)
	if err != nil {
		return nil, err
	}

	parent, err := r.ParentCommit(ctx, c)
	if err != nil {
		return nil, err
	}

	// A nil from-tree diffs against the empty tree, which lists every file
	// the root commit introduced.
	var fromTree *object.Tree
	if parent != nil {
		fromTree, err = r.treeForCommit(parent)
		if err != nil {
			return nil, err
		}
	}

	return r.changedPaths(ctx, fromTree, toTree, filters)
}

// PathChangedBetween reports whether a file or directory changed between
// two commits. A directory path matches any change underneath it.
func (r *Repo) PathChangedBetween(ctx context.Context, path string, from, to *CommitMeta) (bool, error) {
	files, err := r.ChangedFilesBetween(ctx, from, to)
	if err != nil {
		return false, err
	}

	return pathTouched(path, files), nil
}

// PathChangedAt reports whether a file or directory was changed by the
// commit itself, relative to its first parent.
func (r *Repo) PathChangedAt(ctx context.Context, path string, c *CommitMeta) (bool, error) {
	files, err := r.ChangedFilesAt(ctx, c)
	if err != nil {
		return false, err
	}

	return pathTouched(path, files), nil
}

// treeForCommit resolves a commit's root tree.
func (r *Repo) treeForCommit(c *CommitMeta) (*object.Tree, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(c.Hash))
	if err != nil {
		return nil, WrapErrorf(ErrDiffFailed, "failed to load commit %s", c.ShortHash)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, WrapErrorf(ErrDiffFailed, "failed to load tree of commit %s", c.ShortHash)
	}
	return tree, nil
}

// changedPaths diffs two trees and collects the distinct paths touched.
func (r *Repo) changedPaths(ctx context.Context, fromTree, toTree *object.Tree, filters []ChangeFilter) ([]string, error) {
	changes, err := object.DiffTreeContext(ctx, fromTree, toTree)
	if err != nil {
		return nil, WrapError(ErrDiffFailed, err.Error())
	}

	clog.FromContext(ctx).Debugf("tree diff produced %d changes", len(changes))

	seen := make(map[string]struct{})
	for _, change := range changes {
		if !acceptChange(change, filters) {
			continue
		}
		if change.From.Name != "" {
			seen[change.From.Name] = struct{}{}
		}
		if change.To.Name != "" {
			seen[change.To.Name] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return paths, nil
}

// acceptChange reports whether every filter accepts the change.
func acceptChange(change *object.Change, filters []ChangeFilter) bool {
	for _, filter := range filters {
		if !filter(change) {
			return false
		}
	}
	return true
}

// pathTouched reports whether path, or anything underneath it when it names
// a directory, appears in the changed-file set.
func pathTouched(path string, files []string) bool {
	path = strings.TrimSuffix(path, "/")
	for _, file := range files {
		if file == path || strings.HasPrefix(file, path+"/") {
			return true
		}
	}
	return false
}
