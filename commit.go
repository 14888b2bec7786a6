// Package gitmeta provides commit metadata resolution, including the
// expansion of abbreviated commit identifiers.
package gitmeta

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/leodido/go-conventionalcommits"
	"github.com/leodido/go-conventionalcommits/parser"
)

const (
	// fullHashLen is the length of a full SHA-1 commit identifier.
	fullHashLen = 40

	// minPrefixLen is the shortest partial id accepted for expansion.
	// Shorter input is rejected before the store is queried, so malformed
	// ids never trigger a scan of the whole object space.
	minPrefixLen = 4

	// shortHashLen is the display length for abbreviated hashes.
	shortHashLen = 7
)

// Signature identifies the author or committer of a commit.
type Signature struct {
	// Name is the person's name.
	Name string

	// Email is the person's email address.
	Email string
}

// CommitMeta holds the metadata of a single commit. It is an immutable
// value derived from a real object-store lookup, detached from the handle
// that produced it and freely shareable across goroutines.
type CommitMeta struct {
	// Hash is the full 40-character commit identifier.
	Hash string

	// ShortHash is the abbreviated display form of Hash.
	ShortHash string

	// Author is who originally wrote the change.
	Author Signature

	// Committer is who recorded the commit.
	Committer Signature

	// When is the commit timestamp in UTC.
	When time.Time

	// Message is the full commit message (subject and body).
	Message string

	// Parents holds the full hashes of the commit's parents, in order.
	Parents []string
}

// Subject returns the first line of the commit message.
func (c *CommitMeta) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(subject)
}

// Conventional parses the commit subject as a conventional commit.
// It reports false when the subject does not follow the convention.
func (c *CommitMeta) Conventional() (*conventionalcommits.ConventionalCommit, bool) {
	machine := parser.NewMachine(conventionalcommits.WithTypes(conventionalcommits.TypesConventional))

	res, err := machine.Parse([]byte(c.Subject()))
	if err != nil {
		return nil, false
	}

	cc, ok := res.(*conventionalcommits.ConventionalCommit)
	if !ok || !cc.Ok() {
		return nil, false
	}
	return cc, true
}

// newCommitMeta materializes metadata from a go-git commit object.
func newCommitMeta(c *object.Commit) *CommitMeta {
	hash := c.Hash.String()

	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return &CommitMeta{
		Hash:      hash,
		ShortHash: hash[:shortHashLen],
		Author:    Signature{Name: c.Author.Name, Email: c.Author.Email},
		Committer: Signature{Name: c.Committer.Name, Email: c.Committer.Email},
		When:      c.Committer.When.UTC(),
		Message:   c.Message,
		Parents:   parents,
	}
}

// ResolveCommit resolves a full or partial commit identifier to its
// metadata.
//
// A 40-character id is looked up directly. Shorter input is treated as a
// prefix and expanded against every commit object in the store: exactly one
// match resolves, zero matches fail with ErrCommitNotFound, and two or more
// fail with an *AmbiguousCommitIDError listing every matching full hash.
// Input shorter than 4 characters or containing non-hex characters fails
// with ErrCommitNotFound before the store is queried.
//
// Prefix expansion is refused on shallow clones (ErrStoreAccess): truncated
// history would make the match set unreliable.
func (r *Repo) ResolveCommit(ctx context.Context, idOrPrefix string) (*CommitMeta, error) {
	id := strings.ToLower(strings.TrimSpace(idOrPrefix))

	if len(id) < minPrefixLen || len(id) > fullHashLen || !isHex(id) {
		return nil, WrapErrorf(ErrCommitNotFound, "malformed commit id %q", idOrPrefix)
	}

	if len(id) == fullHashLen {
		return r.commitMeta(plumbing.NewHash(id))
	}

	return r.expandPrefix(ctx, id)
}

// ParentCommit returns the metadata of the commit's first parent, or
// (nil, nil) when the commit is a root commit.
func (r *Repo) ParentCommit(ctx context.Context, c *CommitMeta) (*CommitMeta, error) {
	if len(c.Parents) == 0 {
		return nil, nil
	}

	return r.commitMeta(plumbing.NewHash(c.Parents[0]))
}

// commitMeta looks up a commit object by full hash.
func (r *Repo) commitMeta(hash plumbing.Hash) (*CommitMeta, error) {
	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, WrapErrorf(ErrCommitNotFound, "commit %s", hash)
		}
		return nil, WrapError(ErrStoreAccess, err.Error())
	}

	return newCommitMeta(commit), nil
}

// expandPrefix enumerates commit objects matching the prefix.
func (r *Repo) expandPrefix(ctx context.Context, prefix string) (*CommitMeta, error) {
	shallow, err := r.IsShallow(ctx)
	if err != nil {
		return nil, err
	}
	if shallow {
		return nil, WrapError(ErrStoreAccess, "cannot expand a partial commit id on a shallow clone")
	}

	iter, err := r.repo.CommitObjects()
	if err != nil {
		return nil, WrapError(ErrStoreAccess, "failed to enumerate commit objects")
	}
	defer iter.Close()

	var matches []*object.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if strings.HasPrefix(c.Hash.String(), prefix) {
			matches = append(matches, c)
		}
		return nil
	})
	if err != nil {
		return nil, WrapError(ErrStoreAccess, "failed to enumerate commit objects")
	}

	clog.FromContext(ctx).Debugf("prefix %q matched %d commits", prefix, len(matches))

	switch len(matches) {
	case 0:
		return nil, WrapErrorf(ErrCommitNotFound, "no commit matches prefix %q", prefix)
	case 1:
		return newCommitMeta(matches[0]), nil
	default:
		candidates := make([]string, 0, len(matches))
		for _, m := range matches {
			candidates = append(candidates, m.Hash.String())
		}
		sort.Strings(candidates)
		return nil, &AmbiguousCommitIDError{Prefix: prefix, Candidates: candidates}
	}
}

// isHex reports whether s consists only of lowercase hex digits.
func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
