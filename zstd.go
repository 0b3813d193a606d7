package archivefile

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Zstd facilitates Zstandard decompression.
type Zstd struct {
	DecoderOptions []zstd.DOption
}

func (Zstd) Name() string { return ".zst" }

func (zs Zstd) Match(stream io.Reader) (bool, error) {
	buf, err := readAtMost(stream, len(zstdHeader))
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, zstdHeader), nil
}

func (zs Zstd) OpenReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r, zs.DecoderOptions...)
	if err != nil {
		return nil, err
	}
	return errorCloser{zr}, nil
}

// errorCloser gives the zstd decoder's Close, which returns nothing,
// an io.Closer shape.
type errorCloser struct {
	*zstd.Decoder
}

func (ec errorCloser) Close() error {
	ec.Decoder.Close()
	return nil
}

// magic number at the beginning of Zstandard files
// https://github.com/facebook/zstd/blob/6211bfee5ec24dc825c11751c33aa31d618b5f10/doc/zstd_compression_format.md
var zstdHeader = []byte{0x28, 0xb5, 0x2f, 0xfd}
