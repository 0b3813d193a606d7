package archivefile

import (
	"io"

	"github.com/nwaples/rardecode/v2"
)

// rarBackend reads rar archives through nwaples/rardecode. The decoder is
// strictly streaming, so the member index is built by walking the headers
// once at open time; content reads open a fresh decoder and walk to the
// requested entry. Walking off the end of the archive is the decoder's
// way of signaling "no such entry", which is normalized to
// ErrMemberNotFound here.
type rarBackend struct {
	path     string
	password string
	entries  []entry
}

func openRarBackend(path, password string) (backend, error) {
	r := &rarBackend{path: path, password: password}
	rc, err := r.newReader()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	for {
		hdr, err := rc.Next()
		if err == io.EOF {
			return r, nil
		}
		if err != nil {
			return nil, err
		}
		r.entries = append(r.entries, rarEntry(hdr))
	}
}

func (r *rarBackend) newReader() (*rardecode.ReadCloser, error) {
	var opts []rardecode.Option
	if r.password != "" {
		opts = append(opts, rardecode.Password(r.password))
	}
	return rardecode.OpenReader(r.path, opts...)
}

func rarEntry(hdr *rardecode.FileHeader) entry {
	return entry{
		Member: Member{
			Name:           hdr.Name,
			Size:           hdr.UnPackedSize,
			CompressedSize: rarCompressedSize(hdr),
			ModTime:        hdr.ModificationTime,
			IsDir:          hdr.IsDir,
			IsFile:         !hdr.IsDir,
		},
		mode: hdr.Mode(),
	}
}

func rarCompressedSize(hdr *rardecode.FileHeader) int64 {
	if hdr.PackedSize > 0 {
		return hdr.PackedSize
	}
	return hdr.UnPackedSize
}

func (r *rarBackend) List() []entry {
	entries := make([]entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

func (r *rarBackend) Find(name string) (entry, error) {
	for _, e := range r.entries {
		if e.Name == name {
			return e, nil
		}
	}
	return entry{}, ErrMemberNotFound
}

func (r *rarBackend) OpenMember(name string) (io.ReadCloser, error) {
	if _, err := r.Find(name); err != nil {
		return nil, err
	}
	rc, err := r.newReader()
	if err != nil {
		return nil, err
	}
	for {
		hdr, err := rc.Next()
		if err == io.EOF {
			rc.Close()
			return nil, ErrMemberNotFound
		}
		if err != nil {
			rc.Close()
			return nil, err
		}
		if hdr.Name == name {
			return &entryReader{r: rc, close: rc.Close}, nil
		}
	}
}

// Close is a no-op beyond the contract: the construction-time reader is
// already closed and per-read readers close with their entryReader.
func (r *rarBackend) Close() error { return nil }
