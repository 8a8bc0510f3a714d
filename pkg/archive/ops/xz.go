package ops

import (
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

func init() {
	Register(&XzCodec{})
}

// XzCodec implements XZ/LZMA2 compression
type XzCodec struct{}

func (c *XzCodec) Name() string { return "xz" }
func (c *XzCodec) Ext() string  { return ".xz" }

// Compress wraps w with an XZ writer
func (c *XzCodec) Compress(w io.Writer) (io.WriteCloser, error) {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("creating xz writer: %w", err)
	}
	return xw, nil
}

// Decompress wraps r with an XZ reader
func (c *XzCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating xz reader: %w", err)
	}
	return io.NopCloser(xr), nil
}
