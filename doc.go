// Package gitmeta resolves metadata out of local git repositories.
//
// It is a thin facade over go-git for read-only questions: open or clone a
// repository, materialize commit metadata, expand abbreviated commit ids,
// reconcile local branches against their remote tracking branches, detect
// shallow clones, and compute the set of files changed between two commits.
// The object store itself (object decoding, packfiles, wire protocols) is
// entirely go-git's job; this package never writes commits, branches, or
// tags.
//
// All repository state lives behind the project's filesystem abstraction
// (catalyst-forge-libs/fs), so every operation works identically against an
// on-disk or an in-memory repository.
//
// Basic usage:
//
//	repo, err := gitmeta.Open(ctx, &gitmeta.Options{
//		FS: billy.NewOSFS("/path/to/repo"),
//	})
//	if err != nil {
//		return err
//	}
//
//	head, err := repo.ResolveCommit(ctx, "c097ad2")
//	if err != nil {
//		return err
//	}
//
//	files, err := repo.ChangedFilesAt(ctx, head)
//
// Errors are sentinel values checked with errors.Is; ambiguous partial
// commit ids additionally carry the full candidate set (see
// AmbiguousCommitIDError).
package gitmeta
