package gitmeta

import (
	"context"
	"testing"

	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInit tests repository initialization with various configurations
func TestInit(t *testing.T) {
	tests := []struct {
		name     string
		opts     func() Options
		validate func(t *testing.T, repo *Repo, err error)
	}{
		{
			name: "non-bare repository",
			opts: func() Options {
				return Options{
					FS:      fsb.NewInMemoryFS(),
					Bare:    false,
					Workdir: ".",
				}
			},
			validate: func(t *testing.T, repo *Repo, err error) {
				require.NoError(t, err)
				require.NotNil(t, repo)
				assert.NotNil(t, repo.repo, "repo.repo should not be nil")
				assert.NotNil(t, repo.worktree, "worktree should not be nil for non-bare repo")
			},
		},
		{
			name: "bare repository",
			opts: func() Options {
				return Options{
					FS:   fsb.NewInMemoryFS(),
					Bare: true,
				}
			},
			validate: func(t *testing.T, repo *Repo, err error) {
				require.NoError(t, err)
				require.NotNil(t, repo)
				assert.NotNil(t, repo.repo, "repo.repo should not be nil")
				assert.Nil(t, repo.worktree, "worktree should be nil for bare repo")
			},
		},
		{
			name: "invalid options - nil filesystem",
			opts: func() Options {
				return Options{FS: nil}
			},
			validate: func(t *testing.T, repo *Repo, err error) {
				require.Error(t, err, "should fail with nil filesystem")
				assert.Nil(t, repo)
			},
		},
		{
			name: "default options",
			opts: func() Options {
				return Options{FS: fsb.NewInMemoryFS()}
			},
			validate: func(t *testing.T, repo *Repo, err error) {
				require.NoError(t, err)
				require.NotNil(t, repo)
				assert.Equal(t, DefaultWorkdir, repo.options.Workdir)
				assert.Equal(t, DefaultStorerCacheSize, repo.options.StorerCacheSize)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			opts := tt.opts()
			repo, err := Init(ctx, &opts)
			tt.validate(t, repo, err)
		})
	}
}

// TestOpen_ExistingRepository verifies an initialized repository can be
// reopened through the same filesystem.
func TestOpen_ExistingRepository(t *testing.T) {
	tests := []struct {
		name string
		bare bool
	}{
		{name: "non-bare repository", bare: false},
		{name: "bare repository", bare: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			memFS := fsb.NewInMemoryFS()

			initOpts := Options{FS: memFS, Bare: tt.bare}
			_, err := Init(ctx, &initOpts)
			require.NoError(t, err)

			openOpts := Options{FS: memFS, Bare: tt.bare}
			repo, err := Open(ctx, &openOpts)
			require.NoError(t, err)
			require.NotNil(t, repo)
			assert.NotNil(t, repo.repo)
		})
	}
}

// TestOpen_PathNotFound verifies the distinction between a missing workdir
// and a present-but-empty one.
func TestOpen_PathNotFound(t *testing.T) {
	ctx := context.Background()

	opts := Options{
		FS:      fsb.NewInMemoryFS(),
		Workdir: "missing/dir",
	}

	repo, err := Open(ctx, &opts)
	require.Error(t, err)
	assert.Nil(t, repo)
	assert.ErrorIs(t, err, ErrPathNotFound)
}

// TestOpen_NotARepository verifies that an existing directory without
// repository metadata is rejected with the dedicated error.
func TestOpen_NotARepository(t *testing.T) {
	tests := []struct {
		name    string
		workdir string
		setup   func(t *testing.T, memFS *fsb.FS)
	}{
		{
			name:    "root workdir without metadata",
			workdir: ".",
			setup: func(t *testing.T, memFS *fsb.FS) {
				require.NoError(t, memFS.WriteFile("readme.md", []byte("not a repo"), 0o666))
			},
		},
		{
			name:    "existing subdirectory without metadata",
			workdir: "project",
			setup: func(t *testing.T, memFS *fsb.FS) {
				require.NoError(t, memFS.MkdirAll("project", 0o755))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			memFS := fsb.NewInMemoryFS()
			tt.setup(t, memFS)

			opts := Options{FS: memFS, Workdir: tt.workdir}
			repo, err := Open(ctx, &opts)
			require.Error(t, err)
			assert.Nil(t, repo)
			assert.ErrorIs(t, err, ErrNotARepository)
			assert.NotErrorIs(t, err, ErrPathNotFound)
		})
	}
}

// TestOptions_Validate tests option validation rules
func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{
			name:    "valid options",
			opts:    Options{FS: fsb.NewInMemoryFS()},
			wantErr: false,
		},
		{
			name:    "missing filesystem",
			opts:    Options{},
			wantErr: true,
		},
		{
			name:    "negative cache size",
			opts:    Options{FS: fsb.NewInMemoryFS(), StorerCacheSize: -1},
			wantErr: true,
		},
		{
			name:    "negative shallow depth",
			opts:    Options{FS: fsb.NewInMemoryFS(), ShallowDepth: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestOptions_ApplyDefaults verifies defaults only fill unset fields.
func TestOptions_ApplyDefaults(t *testing.T) {
	opts := Options{FS: fsb.NewInMemoryFS()}
	opts.applyDefaults()
	assert.Equal(t, DefaultWorkdir, opts.Workdir)
	assert.Equal(t, DefaultStorerCacheSize, opts.StorerCacheSize)

	custom := Options{FS: fsb.NewInMemoryFS(), Workdir: "repo", StorerCacheSize: 42}
	custom.applyDefaults()
	assert.Equal(t, "repo", custom.Workdir)
	assert.Equal(t, 42, custom.StorerCacheSize)
}
