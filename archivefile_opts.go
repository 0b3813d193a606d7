package archivefile

import (
	"log/slog"

	"github.com/spf13/afero"
)

// Option configures an ArchiveFile at Open.
type Option func(*ArchiveFile)

// WithPassword sets the password used to decode protected entries. The
// password is never required to open an archive or list its members, only
// to read or extract protected content. Zip, 7z, and rar archives support
// passwords; tar has no encryption concept and ignores the value.
func WithPassword(password string) Option {
	return func(a *ArchiveFile) { a.password = password }
}

// WithFS sets the filesystem extraction output is written to. The default
// is the OS filesystem; tests can extract into an in-memory filesystem.
// The archive itself is always read from the OS filesystem.
func WithFS(fsys afero.Fs) Option {
	return func(a *ArchiveFile) {
		if fsys != nil {
			a.fsys = fsys
		}
	}
}

// WithLogger sets a logger for debug-level notes on detection and
// extraction. If nil, nothing is logged (default behavior).
func WithLogger(l *slog.Logger) Option {
	return func(a *ArchiveFile) { a.logger = logger{l} }
}

// logger is a nil-tolerant wrapper so call sites need no nil checks.
type logger struct {
	l *slog.Logger
}

func (lg logger) debug(msg string, args ...any) {
	if lg.l != nil {
		lg.l.Debug(msg, args...)
	}
}
