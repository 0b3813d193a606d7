package archivefile

import (
	"bytes"
	"io"

	"github.com/dsnet/compress/bzip2"
)

// Bz2 facilitates bzip2 decompression.
type Bz2 struct{}

func (Bz2) Name() string { return ".bz2" }

func (bz Bz2) Match(stream io.Reader) (bool, error) {
	buf, err := readAtMost(stream, len(bzip2Header))
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, bzip2Header), nil
}

func (bz Bz2) OpenReader(r io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(r, nil)
}

// magic number at the beginning of bzip2 files
var bzip2Header = []byte("BZh")
