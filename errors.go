// Package gitmeta provides sentinel errors for metadata resolution.
// All errors can be checked using errors.Is() for programmatic handling.
package gitmeta

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors that can be checked with errors.Is().
// These wrap underlying go-git errors while providing a stable API for consumers.

// ErrPathNotFound is returned when the repository workdir does not exist on
// the configured filesystem.
var ErrPathNotFound = errors.New("path not found")

// ErrNotARepository is returned when the workdir exists but does not contain
// valid repository metadata.
var ErrNotARepository = errors.New("not a git repository")

// ErrInvalidCredential is returned when a credential fails validation before
// any network operation is attempted (missing key file, empty username, ...).
var ErrInvalidCredential = errors.New("invalid credential")

// ErrCloneAuthFailed is returned when the remote rejects the presented
// credentials during a clone or listing operation.
var ErrCloneAuthFailed = errors.New("clone authentication failed")

// ErrCloneNetwork is returned on transport-level clone failures (unreachable
// remote, protocol errors, missing repository).
var ErrCloneNetwork = errors.New("clone network error")

// ErrDestinationExists is returned when the clone destination already
// contains a repository.
var ErrDestinationExists = errors.New("destination already contains a repository")

// ErrCommitNotFound is returned when a commit id (full or partial) matches
// no commit object, or when the input is not a plausible hash at all.
var ErrCommitNotFound = errors.New("commit not found")

// ErrAmbiguousCommitID is returned when a partial commit id matches more
// than one commit. The concrete error is an *AmbiguousCommitIDError carrying
// the full candidate set.
var ErrAmbiguousCommitID = errors.New("ambiguous commit id")

// ErrBranchNotFound is returned when an explicitly named branch does not
// exist in the repository.
var ErrBranchNotFound = errors.New("branch not found")

// ErrStoreAccess is returned when the underlying object store cannot be
// read (corrupt storage, shallow history hiding required objects, ...).
var ErrStoreAccess = errors.New("object store access error")

// ErrDiffFailed is returned when a commit's tree cannot be resolved while
// computing a changed-file set.
var ErrDiffFailed = errors.New("diff computation failed")

// AmbiguousCommitIDError reports a partial commit id that matched several
// commits. Candidates holds every matching full hash so the caller can
// disambiguate; it matches ErrAmbiguousCommitID under errors.Is().
type AmbiguousCommitIDError struct {
	// Prefix is the partial id the caller supplied.
	Prefix string

	// Candidates are the full hashes of every matching commit, sorted.
	Candidates []string
}

// Error implements the error interface.
func (e *AmbiguousCommitIDError) Error() string {
	return fmt.Sprintf("ambiguous commit id %q matches %d commits: %s",
		e.Prefix, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// Is reports whether this error matches the ErrAmbiguousCommitID sentinel.
func (e *AmbiguousCommitIDError) Is(target error) bool {
	return target == ErrAmbiguousCommitID
}

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
