package archivefile

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure conditions shared by all backends.
// Check them with errors.Is; the errors returned by this package wrap one
// of these inside an *ArchiveError carrying the archive path and, where
// applicable, the member name.
var (
	// ErrFileNotFound indicates the path given to Open does not exist or
	// is not a regular file. It is reported before any format detection.
	ErrFileNotFound = errors.New("archive file not found")

	// ErrUnsupportedFormat indicates the file exists but matched none of
	// the supported container formats.
	ErrUnsupportedFormat = errors.New("unsupported or unrecognized archive format")

	// ErrMemberNotFound indicates a referenced member name is absent from
	// the archive's member list.
	ErrMemberNotFound = errors.New("member not found in archive")

	// ErrMemberNotAFile indicates byte content was requested for a member
	// that is a directory.
	ErrMemberNotAFile = errors.New("member is not a file")

	// ErrBadMemberRef indicates a value of an unsupported type was passed
	// where a member reference (string, Member, or *Member) was expected.
	ErrBadMemberRef = errors.New("unsupported member reference type")

	// ErrUnsafePath indicates an entry was refused during extraction
	// because its path or type could escape the destination: absolute
	// paths, parent-directory traversal, device or fifo entries, and
	// symlinks pointing outside the destination.
	ErrUnsafePath = errors.New("refusing to extract unsafe entry")
)

// ArchiveError is the error type returned by ArchiveFile operations. It
// carries the operation, the resolved archive path, and the offending
// member name when one is involved, so callers can build messages without
// parsing strings. Unwrap exposes the underlying cause, which is one of
// the sentinel errors above or an I/O error.
type ArchiveError struct {
	Op     string
	Path   string
	Member string
	Err    error
}

func (e *ArchiveError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("archivefile: %s %s: member %q: %v", e.Op, e.Path, e.Member, e.Err)
	}
	return fmt.Sprintf("archivefile: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

func opError(op, path string, err error) error {
	return &ArchiveError{Op: op, Path: path, Err: err}
}

func memberError(op, path, member string, err error) error {
	return &ArchiveError{Op: op, Path: path, Member: member, Err: err}
}
