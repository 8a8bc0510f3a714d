package ops

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

func init() {
	Register(&ZstdCodec{})
}

// ZstdCodec implements Zstandard compression
type ZstdCodec struct{}

func (c *ZstdCodec) Name() string { return "zstd" }
func (c *ZstdCodec) Ext() string  { return ".zst" }

// Compress wraps w with a Zstandard encoder
func (c *ZstdCodec) Compress(w io.Writer) (io.WriteCloser, error) {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("creating zstd writer: %w", err)
	}
	return zw, nil
}

// Decompress wraps r with a Zstandard decoder
func (c *ZstdCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	return zr.IOReadCloser(), nil
}
