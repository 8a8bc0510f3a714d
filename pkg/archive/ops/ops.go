// Package ops provides the optional compression step applied to archive
// files. Codecs register themselves on package init; callers select one
// by name ("gzip", "bzip2", "xz", "zstd") or let ForPath sniff it from
// an archive filename.
package ops

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrUnknownCodec is returned for a compression name with no
// registered implementation.
var ErrUnknownCodec = errors.New("unknown compression codec")

// Codec compresses and decompresses an archive stream.
type Codec interface {
	// Name returns the codec name used on the command line
	Name() string

	// Ext returns the filename extension, including the dot
	Ext() string

	// Compress wraps w; the returned writer must be closed to flush
	Compress(w io.Writer) (io.WriteCloser, error)

	// Decompress wraps r with a decompressing reader
	Decompress(r io.Reader) (io.ReadCloser, error)
}

var registry = make(map[string]Codec)

// Register registers a codec implementation under its name.
func Register(c Codec) {
	registry[c.Name()] = c
}

// ForName retrieves a codec by name. The names "" and "none" select no
// compression and return a nil codec without error.
func ForName(name string) (Codec, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "none" {
		return nil, nil
	}
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// ForPath detects the codec from an archive filename extension. A plain
// ".tar" name yields a nil codec.
func ForPath(path string) Codec {
	for _, c := range registry {
		if strings.HasSuffix(path, c.Ext()) {
			return c
		}
	}
	return nil
}

// Names returns the registered codec names, sorted, for help output.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
