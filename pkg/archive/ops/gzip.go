package ops

import (
	"compress/gzip"
	"fmt"
	"io"
)

func init() {
	Register(&GzipCodec{})
}

// GzipCodec implements GZIP compression
type GzipCodec struct{}

func (c *GzipCodec) Name() string { return "gzip" }
func (c *GzipCodec) Ext() string  { return ".gz" }

// Compress wraps w with a GZIP writer
func (c *GzipCodec) Compress(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

// Decompress wraps r with a GZIP reader
func (c *GzipCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	return gr, nil
}
