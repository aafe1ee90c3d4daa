package tarball

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by archive operations.
var (
	// ErrArchiveNotFound reports an archive path that must already exist
	// (add, list, extract) but does not.
	ErrArchiveNotFound = errors.New("no such archive")

	// ErrPassphrase reports a missing passphrase for an encrypted archive.
	ErrPassphrase = errors.New(EnvPass + " must be set for encrypted archives")
)

// UsageError reports bad, missing, or conflicting command-line arguments.
// The CLI prints help text and exits with a distinct code when it sees one.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// FormatError reports corrupt or unrecognized archive content. It wraps the
// underlying codec or tar error so callers can still match tar.ErrHeader.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: malformed archive: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
