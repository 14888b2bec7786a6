// Package fsbridge adapts the project's fs.Filesystem abstraction to the
// billy filesystem and go-git storage types the object store expects.
package fsbridge

import (
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
)

// minCacheSize is used when callers pass a non-positive cache size.
const minCacheSize = 100

// ToBillyFilesystem unwraps an fs.Filesystem into the billy.Filesystem it
// is backed by. The filesystem must come from the fs/billy package (OS or
// in-memory); anything else cannot carry git storage and is rejected.
//
//nolint:ireturn // billy.Filesystem is the interface go-git consumes
func ToBillyFilesystem(fsys fs.Filesystem) (billy.Filesystem, error) {
	billyFS, ok := fsys.(*fsb.FS)
	if !ok {
		return nil, fmt.Errorf("filesystem must be a billy.FS from fs/billy package, got %T", fsys)
	}

	return billyFS.Raw(), nil
}

// NewStorage creates go-git filesystem storage over billyFS with an LRU
// object cache of cacheSize entries.
func NewStorage(billyFS billy.Filesystem, cacheSize int) *filesystem.Storage {
	if cacheSize <= 0 {
		cacheSize = minCacheSize
	}

	objCache := cache.NewObjectLRU(cache.FileSize(cacheSize))
	return filesystem.NewStorage(billyFS, objCache)
}
