package logging

import (
	"bytes"
	"io"
)

// PrefixWriter wraps an io.Writer and prepends a prefix to every line.
// Partial lines are buffered until their terminating newline arrives.
type PrefixWriter struct {
	prefix  []byte
	out     io.Writer
	pending bytes.Buffer
}

// NewPrefixWriter creates a new PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		out:    w,
	}
}

// Write implements io.Writer. It reports the full input length as written
// even though incomplete lines are held back until their newline arrives.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	if _, err := pw.pending.Write(p); err != nil {
		return 0, err
	}

	for {
		idx := bytes.IndexByte(pw.pending.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := pw.pending.Next(idx + 1)
		if _, err := pw.out.Write(pw.prefix); err != nil {
			return 0, err
		}
		if _, err := pw.out.Write(line); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}
