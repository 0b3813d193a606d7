package archivefile

import (
	"archive/tar"
	"io"
	"os"
)

// tarBackend reads tar archives, transparently decompressing through a
// detected compression layer. Tar is a streaming format with no central
// directory, so the header table is walked once at open time to build the
// member index; content reads rewind the file and walk again behind a
// fresh decompression reader.
type tarBackend struct {
	f       *os.File
	decomp  decompressor // nil for an uncompressed archive
	entries []entry
}

func openTarBackend(path, _ string, decomp decompressor) (backend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	t := &tarBackend{f: f, decomp: decomp}
	if err := t.scan(); err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}

func (t *tarBackend) scan() error {
	tr, closeLayer, err := t.reader()
	if err != nil {
		return err
	}
	defer closeLayer()

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			// ignore the pax global header from git-generated tarballs
			continue
		}
		t.entries = append(t.entries, tarEntry(hdr))
	}
}

func tarEntry(hdr *tar.Header) entry {
	isDir := hdr.Typeflag == tar.TypeDir
	return entry{
		Member: Member{
			Name: hdr.Name,
			Size: hdr.Size,
			// tar has no per-member compressed size
			CompressedSize: hdr.Size,
			ModTime:        hdr.ModTime,
			IsDir:          isDir,
			IsFile:         !isDir,
		},
		mode:       hdr.FileInfo().Mode(),
		linkTarget: hdr.Linkname,
	}
}

// reader rewinds the underlying file and returns a tar reader over it,
// wrapped in a fresh decompression reader when the archive is compressed.
// Decompressor state cannot be reused across rewinds.
func (t *tarBackend) reader() (*tar.Reader, func() error, error) {
	if _, err := t.f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, err
	}
	if t.decomp == nil {
		return tar.NewReader(t.f), func() error { return nil }, nil
	}
	rc, err := t.decomp.OpenReader(t.f)
	if err != nil {
		return nil, nil, err
	}
	return tar.NewReader(rc), rc.Close, nil
}

func (t *tarBackend) List() []entry {
	entries := make([]entry, len(t.entries))
	copy(entries, t.entries)
	return entries
}

func (t *tarBackend) Find(name string) (entry, error) {
	for _, e := range t.entries {
		if e.Name == name {
			return e, nil
		}
	}
	return entry{}, ErrMemberNotFound
}

func (t *tarBackend) OpenMember(name string) (io.ReadCloser, error) {
	if _, err := t.Find(name); err != nil {
		return nil, err
	}
	tr, closeLayer, err := t.reader()
	if err != nil {
		return nil, err
	}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			closeLayer()
			// the index knows this name, so the entry vanished
			// between scans only if the file changed underneath us
			return nil, ErrMemberNotFound
		}
		if err != nil {
			closeLayer()
			return nil, err
		}
		if hdr.Name == name {
			return &entryReader{r: tr, close: closeLayer}, nil
		}
	}
}

func (t *tarBackend) Close() error { return t.f.Close() }

// entryReader reads one member's content and closes the backing
// decompression layer (or other per-read resource) when done.
type entryReader struct {
	r     io.Reader
	close func() error
}

func (er *entryReader) Read(p []byte) (int, error) { return er.r.Read(p) }
func (er *entryReader) Close() error               { return er.close() }
