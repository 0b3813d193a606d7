package archivefile

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// safeRelPath validates a member name for extraction and returns it as a
// clean, destination-relative slash path. Absolute paths, Windows volume
// prefixes, and names that traverse above the destination are refused.
// Archives may carry malicious path entries, so this check is applied to
// every format, not just tar.
func safeRelPath(name string) (string, error) {
	slashed := strings.TrimSuffix(name, "/")
	if path.IsAbs(slashed) || filepath.IsAbs(filepath.FromSlash(slashed)) ||
		filepath.VolumeName(filepath.FromSlash(slashed)) != "" {
		return "", fmt.Errorf("%w: absolute path %q", ErrUnsafePath, name)
	}
	clean := path.Clean(slashed)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: path %q escapes the destination", ErrUnsafePath, name)
	}
	if clean == "." {
		clean = ""
	}
	return clean, nil
}

// writeEntry materializes one entry under dest on fsys and returns the
// path written. Directory entries become directories; regular files are
// copied from open; symlinks are created only when the filesystem
// supports them and the target stays inside the destination; hardlink,
// device, fifo, and socket entries are refused.
func writeEntry(fsys afero.Fs, dest string, e entry, open func() (io.ReadCloser, error)) (string, error) {
	rel, err := safeRelPath(e.Name)
	if err != nil {
		return "", err
	}
	target := filepath.Join(dest, filepath.FromSlash(rel))

	switch {
	case e.IsDir:
		return target, fsys.MkdirAll(target, 0o755)

	case e.mode&fs.ModeSymlink != 0:
		return target, writeSymlink(fsys, rel, target, e.linkTarget)

	case e.linkTarget != "":
		// hardlink entries carry a regular-file mode but no content of
		// their own; writing them as files would produce empty copies
		return "", fmt.Errorf("%w: hardlink %q", ErrUnsafePath, e.Name)

	case !e.mode.IsRegular() && e.mode != 0:
		return "", fmt.Errorf("%w: special file %q", ErrUnsafePath, e.Name)
	}

	if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	rc, err := open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	perm := e.mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	w, err := fsys.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(w, rc); err != nil {
		w.Close()
		return "", err
	}
	return target, w.Close()
}

func writeSymlink(fsys afero.Fs, rel, target, link string) error {
	if link == "" {
		return fmt.Errorf("%w: symlink %q without a target", ErrUnsafePath, rel)
	}
	resolved := path.Join(path.Dir(rel), filepath.ToSlash(link))
	if path.IsAbs(filepath.ToSlash(link)) || resolved == ".." || strings.HasPrefix(resolved, "../") {
		return fmt.Errorf("%w: symlink %q points outside the destination", ErrUnsafePath, rel)
	}
	linker, ok := fsys.(afero.Linker)
	if !ok {
		// filesystems without symlink support (MemMapFs) skip the
		// link rather than failing the whole extraction
		return nil
	}
	if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return linker.SymlinkIfPossible(link, target)
}
