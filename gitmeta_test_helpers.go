package gitmeta

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/require"
)

// fixtureEpoch anchors fixture commit timestamps so test repositories are
// reproducible across runs.
const fixtureEpoch = 1700000000

// testRepo is a helper struct that contains a test repository and its filesystem
type testRepo struct {
	repo *Repo
	fs   fs.Filesystem
	ctx  context.Context

	// commits counts fixture commits so each gets a distinct timestamp.
	commits int
}

// setupTestRepo creates a new test repository with an in-memory filesystem
func setupTestRepo(t *testing.T, bare bool) *testRepo {
	t.Helper()

	ctx := context.Background()
	memFS := fsb.NewInMemoryFS()

	opts := Options{
		FS:      memFS,
		Bare:    bare,
		Workdir: ".",
	}

	repo, err := Init(ctx, &opts)
	require.NoError(t, err, "failed to initialize test repository")
	require.NotNil(t, repo, "repository should not be nil")

	return &testRepo{
		repo: repo,
		fs:   memFS,
		ctx:  ctx,
	}
}

// setupTestRepoWithCommit creates a test repository with an initial commit
func setupTestRepoWithCommit(t *testing.T) (*testRepo, string) {
	t.Helper()

	tr := setupTestRepo(t, false)
	hash := tr.commitFiles(t, map[string]string{"test.txt": "initial content"}, "Initial commit")

	return tr, hash
}

// fixtureSignature builds a deterministic signature for fixture commits.
func (tr *testRepo) fixtureSignature() *object.Signature {
	return &object.Signature{
		Name:  "Test Author",
		Email: "author@example.com",
		When:  time.Unix(fixtureEpoch+int64(tr.commits), 0),
	}
}

// commitFiles writes the given files and commits them, returning the full
// commit hash.
func (tr *testRepo) commitFiles(t *testing.T, files map[string]string, message string) string {
	t.Helper()

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		err := tr.fs.WriteFile(path, []byte(files[path]), 0o666)
		require.NoError(t, err, "failed to write fixture file %s", path)

		_, err = tr.repo.worktree.Add(path)
		require.NoError(t, err, "failed to stage fixture file %s", path)
	}

	sig := tr.fixtureSignature()
	hash, err := tr.repo.worktree.Commit(message, &git.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	require.NoError(t, err, "failed to create fixture commit")

	tr.commits++
	return hash.String()
}

// commitEmpty creates an empty commit, returning the full commit hash.
func (tr *testRepo) commitEmpty(t *testing.T, message string) string {
	t.Helper()

	sig := tr.fixtureSignature()
	hash, err := tr.repo.worktree.Commit(message, &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		AllowEmptyCommits: true,
	})
	require.NoError(t, err, "failed to create empty fixture commit")

	tr.commits++
	return hash.String()
}

// headHash returns the current HEAD commit hash.
func (tr *testRepo) headHash(t *testing.T) string {
	t.Helper()

	head, err := tr.repo.repo.Head()
	require.NoError(t, err, "failed to get HEAD")

	return head.Hash().String()
}

// addRemote registers a remote in the repository configuration.
func (tr *testRepo) addRemote(t *testing.T, name, remoteURL string) {
	t.Helper()

	_, err := tr.repo.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: name,
		URLs: []string{remoteURL},
	})
	require.NoError(t, err, "failed to create remote %s", name)
}

// createRemoteBranch creates a remote-tracking branch reference pointing at
// the current HEAD.
func (tr *testRepo) createRemoteBranch(t *testing.T, remoteName, branchName string) {
	t.Helper()

	head, err := tr.repo.repo.Head()
	require.NoError(t, err, "failed to get HEAD")

	remoteBranchRef := plumbing.NewRemoteReferenceName(remoteName, branchName)
	remoteRef := plumbing.NewHashReference(remoteBranchRef, head.Hash())
	err = tr.repo.repo.Storer.SetReference(remoteRef)
	require.NoError(t, err, "failed to create remote branch reference")
}

// setUpstream records branch tracking configuration for a local branch.
func (tr *testRepo) setUpstream(t *testing.T, branchName, remoteName string) {
	t.Helper()

	cfg, err := tr.repo.repo.Config()
	require.NoError(t, err, "failed to read repository configuration")

	cfg.Branches[branchName] = &gitconfig.Branch{
		Name:   branchName,
		Remote: remoteName,
		Merge:  plumbing.NewBranchReferenceName(branchName),
	}

	err = tr.repo.repo.SetConfig(cfg)
	require.NoError(t, err, "failed to write repository configuration")
}

// markShallow records a shallow boundary at the current HEAD, turning the
// fixture into a shallow repository.
func (tr *testRepo) markShallow(t *testing.T) {
	t.Helper()

	head, err := tr.repo.repo.Head()
	require.NoError(t, err, "failed to get HEAD")

	err = tr.repo.repo.Storer.SetShallow([]plumbing.Hash{head.Hash()})
	require.NoError(t, err, "failed to mark repository shallow")
}

// detachHead points HEAD directly at the current commit.
func (tr *testRepo) detachHead(t *testing.T) {
	t.Helper()

	head, err := tr.repo.repo.Head()
	require.NoError(t, err, "failed to get HEAD")

	err = tr.repo.repo.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, head.Hash()))
	require.NoError(t, err, "failed to detach HEAD")
}
