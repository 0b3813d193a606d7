package archivefile

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
)

// backend is the contract every format adapter satisfies. Listing order is
// the archive's native stored order; List and Find construct Member values
// fresh from the backend's metadata on every call.
type backend interface {
	// List returns every entry in stored order.
	List() []entry

	// Find returns the entry with the given name, or an error wrapping
	// ErrMemberNotFound. Backends translate their library's own
	// not-found signaling into that sentinel here.
	Find(name string) (entry, error)

	// OpenMember returns a reader for the content of the named file
	// entry. Directory entries yield an empty reader.
	OpenMember(name string) (io.ReadCloser, error)

	// Close releases the underlying resource. It is called at most once.
	Close() error
}

// entry pairs the public Member snapshot with the extraction metadata the
// Member model does not carry.
type entry struct {
	Member
	mode       fs.FileMode
	linkTarget string
}

// decompressor is a compression layer that may wrap a tar archive. Match
// inspects magic bytes only; a nil or short stream is not a match.
type decompressor interface {
	Name() string
	Match(stream io.Reader) (bool, error)
	OpenReader(r io.Reader) (io.ReadCloser, error)
}

// decompressors in the order they are probed when checking for a
// compressed tar archive.
var decompressors = []decompressor{Gz{}, Bz2{}, Xz{}, Zstd{}, Lz4{}, Sz{}, Lzip{}}

// Archive format kinds, in fixed detection priority order. The order
// matters: tar's checksum heuristic is weaker than zip's signature, and a
// polyglot must resolve consistently.
const (
	formatZip      = "zip"
	formatTar      = "tar"
	formatSevenZip = "7z"
	formatRar      = "rar"
)

// identify runs the content detectors in fixed order (zip, tar, 7z, rar)
// against stream and reports the matching format. For tar it also probes
// the known compression layers, outermost first, and returns the matching
// decompressor. An empty format name means nothing matched.
func identify(stream io.ReadSeeker) (string, decompressor, error) {
	ok, err := matchAt(stream, matchZip)
	if err != nil {
		return "", nil, err
	}
	if ok {
		return formatZip, nil, nil
	}

	ok, err = matchAt(stream, matchTar)
	if err != nil {
		return "", nil, err
	}
	if ok {
		return formatTar, nil, nil
	}

	// a compressed tar hides its header behind the compression layer,
	// so match the outer layer first, then look for tar underneath
	comp, err := matchCompression(stream)
	if err != nil {
		return "", nil, err
	}
	if comp != nil {
		ok, err := matchCompressedTar(stream, comp)
		if err != nil {
			return "", nil, err
		}
		if ok {
			return formatTar, comp, nil
		}
	}

	ok, err = matchAt(stream, matchSevenZip)
	if err != nil {
		return "", nil, err
	}
	if ok {
		return formatSevenZip, nil, nil
	}

	ok, err = matchAt(stream, matchRar)
	if err != nil {
		return "", nil, err
	}
	if ok {
		return formatRar, nil, nil
	}

	return "", nil, nil
}

// matchAt rewinds stream and applies one matcher.
func matchAt(stream io.ReadSeeker, match func(io.Reader) (bool, error)) (bool, error) {
	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		return false, err
	}
	return match(stream)
}

func matchCompression(stream io.ReadSeeker) (decompressor, error) {
	for _, comp := range decompressors {
		ok, err := matchAt(stream, comp.Match)
		if err != nil {
			return nil, err
		}
		if ok {
			return comp, nil
		}
	}
	return nil, nil
}

func matchCompressedTar(stream io.ReadSeeker, comp decompressor) (bool, error) {
	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		return false, err
	}
	rc, err := comp.OpenReader(stream)
	if err != nil {
		// corrupt or unrelated data behind a lookalike magic number
		// is not a match, not a failure
		return false, nil
	}
	defer rc.Close()
	ok, _ := matchTar(rc)
	return ok, nil
}

// Zip local file header, empty-archive end-of-central-directory, and
// spanned-archive signatures.
var zipHeaders = [][]byte{
	{'P', 'K', 0x03, 0x04},
	{'P', 'K', 0x05, 0x06},
	{'P', 'K', 0x07, 0x08},
}

func matchZip(stream io.Reader) (bool, error) {
	buf, err := readAtMost(stream, 4)
	if err != nil {
		return false, err
	}
	for _, hdr := range zipHeaders {
		if bytes.Equal(buf, hdr) {
			return true, nil
		}
	}
	return false, nil
}

// matchTar attempts to parse a tar header; the checksum validation makes
// random data extremely unlikely to pass.
func matchTar(stream io.Reader) (bool, error) {
	_, err := tar.NewReader(stream).Next()
	return err == nil, nil
}

var sevenZipHeader = []byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c}

func matchSevenZip(stream io.Reader) (bool, error) {
	buf, err := readAtMost(stream, len(sevenZipHeader))
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, sevenZipHeader), nil
}

// RAR 4.x and 5.x signatures.
var rarHeaders = [][]byte{
	{'R', 'a', 'r', '!', 0x1a, 0x07, 0x00},
	{'R', 'a', 'r', '!', 0x1a, 0x07, 0x01, 0x00},
}

func matchRar(stream io.Reader) (bool, error) {
	buf, err := readAtMost(stream, 8)
	if err != nil {
		return false, err
	}
	for _, hdr := range rarHeaders {
		if len(buf) >= len(hdr) && bytes.Equal(buf[:len(hdr)], hdr) {
			return true, nil
		}
	}
	return false, nil
}

// readAtMost reads at most n bytes from the stream. A nil, empty, or short
// stream is not an error. The returned slice of bytes may have length < n
// without an error.
func readAtMost(stream io.Reader, n int) ([]byte, error) {
	if stream == nil || n <= 0 {
		return []byte{}, nil
	}

	buf := make([]byte, n)
	nr, err := io.ReadFull(stream, buf)

	// an empty or short stream is not an error; the caller only wants
	// as many bytes as are available
	if err == nil ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return buf[:nr], nil
	}

	return nil, err
}

// IsZip reports whether the file at path is a zip archive, judged by
// content only. Missing or unreadable files report false.
func IsZip(path string) bool { return matchFile(path, matchZip) }

// IsTar reports whether the file at path is a tar archive, either plain
// or wrapped in one of the supported compression layers.
func IsTar(path string) bool {
	f, ok := openRegular(path)
	if !ok {
		return false
	}
	defer f.Close()
	if matched, err := matchAt(f, matchTar); err == nil && matched {
		return true
	}
	comp, err := matchCompression(f)
	if err != nil || comp == nil {
		return false
	}
	ok, err = matchCompressedTar(f, comp)
	return err == nil && ok
}

// IsSevenZip reports whether the file at path is a 7z archive.
func IsSevenZip(path string) bool { return matchFile(path, matchSevenZip) }

// IsRar reports whether the file at path is a rar archive.
func IsRar(path string) bool { return matchFile(path, matchRar) }

// IsArchive reports whether the file at path is in any supported archive
// format. It returns false, rather than an error, for paths that do not
// exist or are not regular files.
func IsArchive(path string) bool {
	f, ok := openRegular(path)
	if !ok {
		return false
	}
	defer f.Close()
	name, _, err := identify(f)
	return err == nil && name != ""
}

func matchFile(path string, match func(io.Reader) (bool, error)) bool {
	f, ok := openRegular(path)
	if !ok {
		return false
	}
	defer f.Close()
	matched, err := match(f)
	return err == nil && matched
}

func openRegular(path string) (*os.File, bool) {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return nil, false
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	return f, true
}
