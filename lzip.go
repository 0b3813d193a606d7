package archivefile

import (
	"bytes"
	"io"

	"github.com/sorairolake/lzip-go"
)

// Lzip facilitates lzip decompression.
type Lzip struct{}

func (Lzip) Name() string { return ".lz" }

func (lz Lzip) Match(stream io.Reader) (bool, error) {
	buf, err := readAtMost(stream, len(lzipHeader))
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, lzipHeader), nil
}

func (Lzip) OpenReader(r io.Reader) (io.ReadCloser, error) {
	lzr, err := lzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(lzr), nil
}

// magic number at the beginning of lzip files
// https://datatracker.ietf.org/doc/html/draft-diaz-lzip-09#section-2
var lzipHeader = []byte("LZIP")
