package archivefile

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/pgzip"
)

// Gz facilitates gzip decompression.
type Gz struct {
	// DisableMultistream controls whether the reader supports multistream
	// files. See https://pkg.go.dev/compress/gzip#example-Reader.Multistream
	DisableMultistream bool

	// Use a fast parallel gzip implementation. This is only
	// effective for large streams (about 1 MB or greater).
	Multithreaded bool
}

func (Gz) Name() string { return ".gz" }

func (gz Gz) Match(stream io.Reader) (bool, error) {
	buf, err := readAtMost(stream, len(gzHeader))
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, gzHeader), nil
}

func (gz Gz) OpenReader(r io.Reader) (io.ReadCloser, error) {
	if gz.Multithreaded {
		gzR, err := pgzip.NewReader(r)
		if gzR != nil && gz.DisableMultistream {
			gzR.Multistream(false)
		}
		return gzR, err
	}

	gzR, err := gzip.NewReader(r)
	if gzR != nil && gz.DisableMultistream {
		gzR.Multistream(false)
	}
	return gzR, err
}

// magic number at the beginning of gzip files
var gzHeader = []byte{0x1f, 0x8b}
