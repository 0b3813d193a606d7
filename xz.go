package archivefile

import (
	"bytes"
	"io"

	"github.com/ulikunitz/xz"
)

// Xz facilitates xz decompression.
type Xz struct{}

func (Xz) Name() string { return ".xz" }

func (x Xz) Match(stream io.Reader) (bool, error) {
	buf, err := readAtMost(stream, len(xzHeader))
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, xzHeader), nil
}

func (Xz) OpenReader(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}

// magic number at the beginning of xz files (https://tukaani.org/xz/xz-file-format.txt)
var xzHeader = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
