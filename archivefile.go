package archivefile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ArchiveFile is an open archive. It owns exactly one underlying archive
// resource for its lifetime: the format is detected once at Open and never
// re-detected, and Close releases the resource.
//
// An ArchiveFile is not safe for concurrent use; open one handle per
// goroutine. Operations on a closed handle fail with an error wrapping
// fs.ErrClosed.
type ArchiveFile struct {
	path     string
	password string
	fsys     afero.Fs
	logger   logger
	backend  backend
	closed   bool
}

// Open opens the archive at path, detecting its format by content. The
// path must name an existing regular file, otherwise ErrFileNotFound is
// reported before any detection runs. Files matching none of the
// supported formats report ErrUnsupportedFormat.
//
// The archive stays open until Close; the usual pattern is
//
//	archive, err := archivefile.Open(path)
//	if err != nil {
//		return err
//	}
//	defer archive.Close()
func Open(path string, opts ...Option) (*ArchiveFile, error) {
	a := &ArchiveFile{fsys: afero.NewOsFs()}
	for _, opt := range opts {
		opt(a)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, opError("open", path, err)
	}
	a.path = abs

	fi, err := os.Stat(abs)
	if err != nil || !fi.Mode().IsRegular() {
		return nil, opError("open", abs, ErrFileNotFound)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, opError("open", abs, err)
	}
	name, decomp, err := identify(f)
	f.Close()
	if err != nil {
		return nil, opError("open", abs, err)
	}

	switch name {
	case formatZip:
		a.backend, err = openZipBackend(abs, a.password)
	case formatTar:
		a.backend, err = openTarBackend(abs, a.password, decomp)
	case formatSevenZip:
		a.backend, err = openSevenZipBackend(abs, a.password)
	case formatRar:
		a.backend, err = openRarBackend(abs, a.password)
	default:
		return nil, opError("open", abs, fmt.Errorf(
			"%w (if this is a 7z or rar archive, it may need the optional 7z/rar support)",
			ErrUnsupportedFormat))
	}
	if err != nil {
		return nil, opError("open", abs, err)
	}

	a.logger.debug("archive opened", "path", abs, "format", name)
	return a, nil
}

// Path returns the resolved absolute path of the archive file.
func (a *ArchiveFile) Path() string { return a.path }

// Password returns the password the archive was opened with, or "".
func (a *ArchiveFile) Password() string { return a.password }

// String describes the handle without revealing the password.
func (a *ArchiveFile) String() string {
	if a.password != "" {
		return fmt.Sprintf("ArchiveFile(%q, password=%q)", a.path, "********")
	}
	return fmt.Sprintf("ArchiveFile(%q)", a.path)
}

func (a *ArchiveFile) ready(op string) error {
	if a.closed {
		return opError(op, a.path, fs.ErrClosed)
	}
	return nil
}

// find looks up a member by its verbatim name, falling back to the
// slash-normalized spelling when the verbatim one is absent. The
// returned entry's Name is the spelling the archive actually stores;
// callers open content by that name.
func (a *ArchiveFile) find(name string) (entry, error) {
	e, err := a.backend.Find(name)
	if err == nil || !errors.Is(err, ErrMemberNotFound) {
		return e, err
	}
	if alt := normalizedName(name); alt != "" {
		if e, altErr := a.backend.Find(alt); altErr == nil {
			return e, nil
		}
	}
	return entry{}, err
}

// GetMember returns the member identified by ref. The Member is a fresh
// snapshot of the backend's metadata, not a live reference.
func (a *ArchiveFile) GetMember(ref MemberRef) (Member, error) {
	if err := a.ready("stat"); err != nil {
		return Member{}, err
	}
	name, err := memberName(ref)
	if err != nil {
		return Member{}, opError("stat", a.path, err)
	}
	e, err := a.find(name)
	if err != nil {
		return Member{}, memberError("stat", a.path, name, err)
	}
	return e.Member, nil
}

// GetMembers returns every member of the archive in its native stored
// order, the same order GetNames reports.
func (a *ArchiveFile) GetMembers() ([]Member, error) {
	if err := a.ready("list"); err != nil {
		return nil, err
	}
	entries := a.backend.List()
	members := make([]Member, 0, len(entries))
	for _, e := range entries {
		members = append(members, e.Member)
	}
	return members, nil
}

// GetNames returns every member name in the archive's native stored order.
func (a *ArchiveFile) GetNames() ([]string, error) {
	if err := a.ready("list"); err != nil {
		return nil, err
	}
	entries := a.backend.List()
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// Extract materializes one member under destination (the current working
// directory when destination is empty), creating the destination and any
// parents as needed, and returns the path written. Extracting a directory
// entry creates the directory.
func (a *ArchiveFile) Extract(ref MemberRef, destination string) (string, error) {
	if err := a.ready("extract"); err != nil {
		return "", err
	}
	name, err := memberName(ref)
	if err != nil {
		return "", opError("extract", a.path, err)
	}
	e, err := a.find(name)
	if err != nil {
		return "", memberError("extract", a.path, name, err)
	}
	dest, err := a.destination(destination)
	if err != nil {
		return "", err
	}

	written, err := writeEntry(a.fsys, dest, e, func() (io.ReadCloser, error) {
		return a.backend.OpenMember(e.Name)
	})
	if err != nil {
		return "", memberError("extract", a.path, name, err)
	}
	a.logger.debug("member extracted", "member", name, "path", written)
	return written, nil
}

// ExtractAll extracts members under destination (the current working
// directory when empty) and returns the destination path. With no members
// given, every entry is extracted. Otherwise only the named members are
// extracted: all requested names are validated against the archive before
// any entry is written, so one unknown name aborts the call with
// ErrMemberNotFound and zero extraction side effects. Once extraction has
// begun, an I/O failure aborts the call but leaves already-written
// entries in place.
func (a *ArchiveFile) ExtractAll(destination string, members ...MemberRef) (string, error) {
	if err := a.ready("extract"); err != nil {
		return "", err
	}

	entries := a.backend.List()
	if len(members) > 0 {
		available := make([]string, 0, len(entries))
		for _, e := range entries {
			available = append(available, e.Name)
		}
		names, err := validateMembers(members, available, a.path)
		if err != nil {
			return "", err
		}
		wanted := make(map[string]struct{}, len(names))
		for _, name := range names {
			wanted[name] = struct{}{}
		}
		selected := entries[:0:0]
		for _, e := range entries {
			if _, ok := wanted[e.Name]; ok {
				selected = append(selected, e)
			}
		}
		entries = selected
	}

	dest, err := a.destination(destination)
	if err != nil {
		return "", err
	}
	if err := a.fsys.MkdirAll(dest, 0o755); err != nil {
		return "", opError("extract", a.path, err)
	}

	for _, e := range entries {
		name := e.Name
		if _, err := writeEntry(a.fsys, dest, e, func() (io.ReadCloser, error) {
			return a.backend.OpenMember(name)
		}); err != nil {
			return "", memberError("extract", a.path, name, err)
		}
	}
	a.logger.debug("archive extracted", "destination", dest, "members", len(entries))
	return dest, nil
}

// ReadBytes returns the full content of a file member. Directory members
// have no byte content and fail with ErrMemberNotAFile.
func (a *ArchiveFile) ReadBytes(ref MemberRef) ([]byte, error) {
	if err := a.ready("read"); err != nil {
		return nil, err
	}
	name, err := memberName(ref)
	if err != nil {
		return nil, opError("read", a.path, err)
	}
	e, err := a.find(name)
	if err != nil {
		return nil, memberError("read", a.path, name, err)
	}
	if e.IsDir {
		return nil, memberError("read", a.path, name, ErrMemberNotAFile)
	}
	rc, err := a.backend.OpenMember(e.Name)
	if err != nil {
		return nil, memberError("read", a.path, name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, memberError("read", a.path, name, err)
	}
	return data, nil
}

// ReadText reads a file member and decodes it to a string. The default is
// UTF-8 with strict error handling; override with TextEncoding and
// TextErrors.
func (a *ArchiveFile) ReadText(ref MemberRef, opts ...TextOption) (string, error) {
	data, err := a.ReadBytes(ref)
	if err != nil {
		return "", err
	}
	var cfg textConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	text, err := decodeText(data, cfg)
	if err != nil {
		name, _ := memberName(ref)
		return "", memberError("read", a.path, name, err)
	}
	return text, nil
}

// Close releases the underlying archive resource. Repeated calls are
// no-ops and never return an error.
func (a *ArchiveFile) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	return a.backend.Close()
}

// destination resolves the extraction destination, defaulting to the
// current working directory.
func (a *ArchiveFile) destination(destination string) (string, error) {
	if destination == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", opError("extract", a.path, err)
		}
		return cwd, nil
	}
	abs, err := filepath.Abs(destination)
	if err != nil {
		return "", opError("extract", a.path, err)
	}
	return abs, nil
}
