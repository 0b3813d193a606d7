package archivefile

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/s2"
)

// Sz facilitates Snappy decompression. It reads through S2,
// which accepts both Snappy and S2 framed streams.
type Sz struct{}

func (Sz) Name() string { return ".sz" }

func (sz Sz) Match(stream io.Reader) (bool, error) {
	buf, err := readAtMost(stream, len(snappyHeader))
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, snappyHeader), nil
}

func (Sz) OpenReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(r)), nil
}

// https://github.com/google/snappy/blob/master/framing_format.txt - contains "sNaPpY"
var snappyHeader = []byte{0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50, 0x70, 0x59}
