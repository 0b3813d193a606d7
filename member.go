package archivefile

import "time"

// Member describes one entry of an archive. It is a snapshot of the entry's
// metadata taken at query time, not a live reference into the archive.
type Member struct {
	// Name is the entry's path within the archive, forward-slash separated.
	Name string

	// Size is the uncompressed size in bytes. Zero for directories.
	Size int64

	// CompressedSize is the stored size in bytes. Backends that cannot
	// report a real compressed size (stored zip entries, tar, 7z) report
	// the uncompressed size here instead.
	CompressedSize int64

	// ModTime is the entry's modification time as recorded in the archive.
	ModTime time.Time

	// IsDir and IsFile are mutually exclusive; exactly one is true.
	IsDir  bool
	IsFile bool
}

func (m Member) String() string { return m.Name }
