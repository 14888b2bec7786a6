// Package gitmeta provides repository lifecycle operations.
// It operates exclusively through the project's native filesystem abstraction.
package gitmeta

import (
	"context"
	"errors"
	"fmt"

	gobilly "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/forgelabs/gitmeta/internal/fsbridge"
)

const (
	// DefaultStorerCacheSize is the default size for the LRU object cache.
	DefaultStorerCacheSize = 1000

	// DefaultWorkdir is the default worktree directory name.
	DefaultWorkdir = "."

	// DefaultRemoteName is the default remote name used for operations.
	DefaultRemoteName = "origin"
)

// AuthProvider resolves authentication methods for remote operations.
// Implementations should handle different URL schemes and credential sources.
type AuthProvider interface {
	// Method returns the appropriate transport.AuthMethod for the given remote URL.
	// Returns nil if no authentication is needed/available for this URL.
	// Returns an error if authentication cannot be resolved for the URL.
	Method(remoteURL string) (transport.AuthMethod, error)
}

// Options configures repository discovery, cloning, and performance.
type Options struct {
	// FS is the REQUIRED native filesystem root (OS or in-memory).
	// All repository state lives within this filesystem.
	FS fs.Filesystem

	// Workdir is the path within FS for the worktree root.
	// Defaults to "." (current directory in FS).
	Workdir string

	// Bare indicates if this is a bare repository (.git only, no worktree).
	// Defaults to false (non-bare repository with worktree).
	Bare bool

	// StorerCacheSize sets the LRU objects cache entries.
	// Higher values improve performance but use more memory.
	// Defaults to DefaultStorerCacheSize.
	StorerCacheSize int

	// Credential is an optional credential consumed by clone and remote
	// listing operations. It is validated before any network I/O.
	// Takes precedence over Auth when both are set.
	Credential *Credential

	// Auth is an optional provider that resolves per-URL AuthMethod.
	// If nil and Credential is nil, no authentication will be available.
	Auth AuthProvider

	// ShallowDepth sets the depth for shallow clone operations.
	// If > 0, clones will be shallow with the specified depth.
	// If 0, full clones are performed.
	ShallowDepth int
}

// Validate checks that the Options are properly configured.
// It returns an error if required fields are missing or invalid.
func (o *Options) Validate() error {
	if o.FS == nil {
		return errors.New("FS is required")
	}

	if o.StorerCacheSize < 0 {
		return errors.New("StorerCacheSize cannot be negative")
	}

	if o.ShallowDepth < 0 {
		return errors.New("ShallowDepth cannot be negative")
	}

	return nil
}

// applyDefaults sets default values for any unset fields in Options.
func (o *Options) applyDefaults() {
	if o.Workdir == "" {
		o.Workdir = DefaultWorkdir
	}

	if o.StorerCacheSize == 0 {
		o.StorerCacheSize = DefaultStorerCacheSize
	}
}

// authFor resolves the auth method for a remote URL from whichever credential
// source is configured. Returns (nil, nil) when the repository is public.
func (o *Options) authFor(remoteURL string) (transport.AuthMethod, error) {
	if o.Credential != nil {
		return o.Credential.authMethod(remoteURL)
	}
	if o.Auth != nil {
		return o.Auth.Method(remoteURL)
	}
	return nil, nil
}

// repoLayout holds the storage and worktree filesystem for a repository
// location, derived from Options.
type repoLayout struct {
	scoped   gobilly.Filesystem
	storage  *filesystem.Storage
	worktree gobilly.Filesystem
}

// layout scopes the configured filesystem to the workdir and builds go-git
// storage for it. For non-bare repositories storage lives under .git and the
// workdir itself is the worktree; for bare repositories storage is the root.
func (o *Options) layout() (*repoLayout, error) {
	billyFS, err := fsbridge.ToBillyFilesystem(o.FS)
	if err != nil {
		return nil, fmt.Errorf("filesystem conversion failed: %w", err)
	}

	scopedFS, err := billyFS.Chroot(o.Workdir)
	if err != nil {
		return nil, fmt.Errorf("failed to chroot to workdir %q: %w", o.Workdir, err)
	}

	if o.Bare {
		return &repoLayout{
			scoped:  scopedFS,
			storage: fsbridge.NewStorage(scopedFS, o.StorerCacheSize),
		}, nil
	}

	dotGitFS, err := scopedFS.Chroot(git.GitDirName)
	if err != nil {
		return nil, fmt.Errorf("failed to access .git directory: %w", err)
	}

	return &repoLayout{
		scoped:   scopedFS,
		storage:  fsbridge.NewStorage(dotGitFS, o.StorerCacheSize),
		worktree: scopedFS,
	}, nil
}

// workdirPresent reports whether the configured workdir exists. The root
// workdir "." cannot be stat'ed portably across billy backends, so it is
// probed with a directory read instead.
func (o *Options) workdirPresent(scoped gobilly.Filesystem) bool {
	if o.Workdir != DefaultWorkdir {
		ok, err := o.FS.Exists(o.Workdir)
		return err == nil && ok
	}

	_, err := scoped.ReadDir(".")
	return err == nil
}

// Repo is a handle on an opened repository. It is the exclusive owner of the
// underlying object-store connection; metadata values derived from it
// (CommitMeta, BranchInfo, path slices) carry no reference back to the
// handle and stay valid after the handle is dropped.
//
// A Repo is not safe for concurrent use without external synchronization.
type Repo struct {
	repo     *git.Repository
	worktree *git.Worktree
	fs       fs.Filesystem
	options  Options
}

// Init creates a new empty repository at the configured workdir.
// It exists to bootstrap repositories (fixtures, fresh checkouts); all
// metadata operations on the returned handle are read-only.
func Init(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}

	opts.applyDefaults()

	layout, err := opts.layout()
	if err != nil {
		return nil, err
	}

	repo, err := git.Init(layout.storage, layout.worktree)
	if err != nil {
		return nil, WrapError(err, "failed to initialize repository")
	}

	return newRepo(repo, opts)
}

// Open opens an existing repository at the configured workdir.
//
// It fails with ErrPathNotFound when the workdir does not exist on the
// filesystem, and with ErrNotARepository when the workdir exists but holds
// no repository metadata.
func Open(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}

	opts.applyDefaults()

	layout, err := opts.layout()
	if err != nil {
		return nil, err
	}

	repo, err := git.Open(layout.storage, layout.worktree)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			if !opts.workdirPresent(layout.scoped) {
				return nil, WrapErrorf(ErrPathNotFound, "workdir %q", opts.Workdir)
			}
			return nil, WrapErrorf(ErrNotARepository, "workdir %q", opts.Workdir)
		}
		return nil, WrapError(err, "failed to open repository")
	}

	return newRepo(repo, opts)
}

// newRepo wraps a go-git repository in a handle, attaching the worktree for
// non-bare repositories.
func newRepo(repo *git.Repository, opts *Options) (*Repo, error) {
	r := &Repo{
		repo:    repo,
		fs:      opts.FS,
		options: *opts,
	}

	if !opts.Bare {
		worktree, err := repo.Worktree()
		if err != nil {
			return nil, WrapError(err, "failed to get worktree")
		}
		r.worktree = worktree
	}

	return r, nil
}
