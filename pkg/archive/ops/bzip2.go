package ops

import (
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
)

func init() {
	Register(&Bzip2Codec{})
}

// Bzip2Codec implements BZIP2 compression
type Bzip2Codec struct{}

func (c *Bzip2Codec) Name() string { return "bzip2" }
func (c *Bzip2Codec) Ext() string  { return ".bz2" }

// Compress wraps w with a BZIP2 writer at maximum compression
func (c *Bzip2Codec) Compress(w io.Writer) (io.WriteCloser, error) {
	bw, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: 9})
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 writer: %w", err)
	}
	return bw, nil
}

// Decompress wraps r with a BZIP2 reader
func (c *Bzip2Codec) Decompress(r io.Reader) (io.ReadCloser, error) {
	br, err := bzip2.NewReader(r, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 reader: %w", err)
	}
	return br, nil
}
