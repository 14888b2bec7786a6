package gitmeta

import (
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diffFixture builds a two-commit history with distinct file types and
// directories for changed-file assertions.
func diffFixture(t *testing.T) (*testRepo, *CommitMeta, *CommitMeta) {
	t.Helper()

	tr := setupTestRepo(t, false)

	first := tr.commitFiles(t, map[string]string{
		"a.txt":          "one",
		"docs/readme.md": "docs",
	}, "Initial commit")

	second := tr.commitFiles(t, map[string]string{
		"a.txt":       "two",
		"src/main.go": "package main",
	}, "Add source")

	firstMeta, err := tr.repo.ResolveCommit(tr.ctx, first)
	require.NoError(t, err)
	secondMeta, err := tr.repo.ResolveCommit(tr.ctx, second)
	require.NoError(t, err)

	return tr, firstMeta, secondMeta
}

// TestChangedFilesBetween verifies the changed set and its symmetry.
func TestChangedFilesBetween(t *testing.T) {
	tr, first, second := diffFixture(t)

	files, err := tr.repo.ChangedFilesBetween(tr.ctx, first, second)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "src/main.go"}, files)

	reversed, err := tr.repo.ChangedFilesBetween(tr.ctx, second, first)
	require.NoError(t, err)
	assert.Equal(t, files, reversed, "changed set should be symmetric")
}

// TestChangedFilesBetween_SameCommit verifies the empty diff.
func TestChangedFilesBetween_SameCommit(t *testing.T) {
	tr, first, _ := diffFixture(t)

	files, err := tr.repo.ChangedFilesBetween(tr.ctx, first, first)
	require.NoError(t, err)
	assert.Empty(t, files)
}

// TestChangedFilesAt verifies per-commit changed sets, including the full
// listing for a root commit.
func TestChangedFilesAt(t *testing.T) {
	tr, first, second := diffFixture(t)

	files, err := tr.repo.ChangedFilesAt(tr.ctx, first)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "docs/readme.md"}, files,
		"root commit should report every file it introduced")

	files, err = tr.repo.ChangedFilesAt(tr.ctx, second)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "src/main.go"}, files)
}

// TestChangedFilesAt_Deletion verifies removed files appear in the set.
func TestChangedFilesAt_Deletion(t *testing.T) {
	tr, _, _ := diffFixture(t)

	_, err := tr.repo.worktree.Remove("docs/readme.md")
	require.NoError(t, err)

	sig := tr.fixtureSignature()
	hash, err := tr.repo.worktree.Commit("Remove docs", &git.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	require.NoError(t, err)
	tr.commits++

	meta, err := tr.repo.ResolveCommit(tr.ctx, hash.String())
	require.NoError(t, err)

	files, err := tr.repo.ChangedFilesAt(tr.ctx, meta)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/readme.md"}, files)
}

// TestPathChangedBetween verifies file and directory path checks.
func TestPathChangedBetween(t *testing.T) {
	tr, first, second := diffFixture(t)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "modified file", path: "a.txt", want: true},
		{name: "added file", path: "src/main.go", want: true},
		{name: "directory containing a change", path: "src", want: true},
		{name: "directory with trailing slash", path: "src/", want: true},
		{name: "untouched file", path: "docs/readme.md", want: false},
		{name: "untouched directory", path: "docs", want: false},
		{name: "unknown path", path: "nothing.txt", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed, err := tr.repo.PathChangedBetween(tr.ctx, tt.path, first, second)
			require.NoError(t, err)
			assert.Equal(t, tt.want, changed)
		})
	}
}

// TestPathChangedAt verifies per-commit path checks.
func TestPathChangedAt(t *testing.T) {
	tr, first, second := diffFixture(t)

	changed, err := tr.repo.PathChangedAt(tr.ctx, "docs", first)
	require.NoError(t, err)
	assert.True(t, changed, "root commit introduced docs/")

	changed, err = tr.repo.PathChangedAt(tr.ctx, "docs", second)
	require.NoError(t, err)
	assert.False(t, changed)
}

// TestChangeFilters verifies filter composition on changed-file sets.
func TestChangeFilters(t *testing.T) {
	tr, first, second := diffFixture(t)

	tests := []struct {
		name    string
		filters []ChangeFilter
		want    []string
	}{
		{
			name:    "extension filter",
			filters: []ChangeFilter{ExtensionFilter(".go")},
			want:    []string{"src/main.go"},
		},
		{
			name:    "extension filter without dot",
			filters: []ChangeFilter{ExtensionFilter("txt")},
			want:    []string{"a.txt"},
		},
		{
			name:    "path prefix filter",
			filters: []ChangeFilter{PathPrefixFilter("src")},
			want:    []string{"src/main.go"},
		},
		{
			name:    "exclude path prefix filter",
			filters: []ChangeFilter{ExcludePathPrefixFilter("src")},
			want:    []string{"a.txt"},
		},
		{
			name:    "glob filter",
			filters: []ChangeFilter{PathFilter("*.txt")},
			want:    []string{"a.txt"},
		},
		{
			name:    "filters compose with AND semantics",
			filters: []ChangeFilter{PathPrefixFilter("src"), ExtensionFilter(".txt")},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := tr.repo.ChangedFilesBetween(tr.ctx, first, second, tt.filters...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, files)
		})
	}
}
