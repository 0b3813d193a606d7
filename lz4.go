package archivefile

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Lz4 facilitates LZ4 decompression.
type Lz4 struct{}

func (Lz4) Name() string { return ".lz4" }

func (lz Lz4) Match(stream io.Reader) (bool, error) {
	buf, err := readAtMost(stream, len(lz4Header))
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, lz4Header), nil
}

func (Lz4) OpenReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

// magic number at the beginning of lz4 frame files
var lz4Header = []byte{0x04, 0x22, 0x4d, 0x18}
