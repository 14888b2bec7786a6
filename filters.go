// Package gitmeta provides filters for changed-file computation.
package gitmeta

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// ChangeFilter decides whether a tree change participates in a changed-file
// result. A change passes when the filter returns true for it.
type ChangeFilter func(change *object.Change) bool

// PathFilter keeps changes whose path matches a glob pattern
// (filepath.Match syntax). Renames match on either side.
func PathFilter(pattern string) ChangeFilter {
	return func(change *object.Change) bool {
		return matchEitherSide(change, func(path string) bool {
			ok, err := filepath.Match(pattern, path)
			return err == nil && ok
		})
	}
}

// PathPrefixFilter keeps changes under a directory prefix.
func PathPrefixFilter(prefix string) ChangeFilter {
	prefix = strings.TrimSuffix(prefix, "/")
	return func(change *object.Change) bool {
		return matchEitherSide(change, func(path string) bool {
			return path == prefix || strings.HasPrefix(path, prefix+"/")
		})
	}
}

// ExcludePathPrefixFilter drops changes under a directory prefix.
func ExcludePathPrefixFilter(prefix string) ChangeFilter {
	include := PathPrefixFilter(prefix)
	return func(change *object.Change) bool {
		return !include(change)
	}
}

// ExtensionFilter keeps changes whose path has one of the given file
// extensions. Extensions are matched with or without a leading dot.
func ExtensionFilter(extensions ...string) ChangeFilter {
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}

	return func(change *object.Change) bool {
		return matchEitherSide(change, func(path string) bool {
			ext := filepath.Ext(path)
			for _, want := range normalized {
				if ext == want {
					return true
				}
			}
			return false
		})
	}
}

// matchEitherSide applies a path predicate to both sides of a change, so
// renames are caught by their old or new name.
func matchEitherSide(change *object.Change, match func(string) bool) bool {
	if change.From.Name != "" && match(change.From.Name) {
		return true
	}
	if change.To.Name != "" && match(change.To.Name) {
		return true
	}
	return false
}
