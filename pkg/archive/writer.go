package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/rconf-io/rconf/pkg/archive/ops"
	"github.com/rconf-io/rconf/pkg/paths"
)

// EncodeTo serializes the archive as a tar stream. The manifest goes
// first so readers can stop early when they only need metadata. Header
// timestamps and ownership are zeroed: building the same manifest twice
// against an unchanged filesystem must yield byte-identical output.
func (a *Archive) EncodeTo(w io.Writer) error {
	tw := tar.NewWriter(w)

	data, err := a.Manifest.Encode()
	if err != nil {
		return err
	}
	if err := writeEntry(tw, paths.ManifestEntryName, 0o644, data); err != nil {
		return err
	}

	for _, e := range a.Entries {
		if err := writeEntry(tw, e.Record.TarPath(), int64(e.Mode), e.Data); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar writer: %w", err)
	}
	return nil
}

func writeEntry(tw *tar.Writer, name string, mode int64, data []byte) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    mode,
		Size:    int64(len(data)),
		ModTime: time.Unix(0, 0),
		Format:  tar.FormatUSTAR,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing tar header for %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("writing tar data for %s: %w", name, err)
	}
	return nil
}

// OutputName normalizes a requested archive name: the ".tar" suffix is
// appended when missing, and the codec's extension follows it.
func OutputName(name string, codec ops.Codec) string {
	if codec != nil {
		name = strings.TrimSuffix(name, codec.Ext())
	}
	if !strings.HasSuffix(name, Suffix) {
		name += Suffix
	}
	if codec != nil {
		name += codec.Ext()
	}
	return name
}

// WriteFile persists the archive at the requested path, which may be
// relative or absolute; the normalized path actually written is
// returned. A nil codec writes plain tar.
func (a *Archive) WriteFile(path string, codec ops.Codec, logger hclog.Logger) (string, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	path = OutputName(path, codec)

	var need int64
	for _, e := range a.Entries {
		need += int64(len(e.Data)) + 1024
	}
	if avail, err := availableDiskSpace(filepath.Dir(path)); err == nil && avail < need {
		logger.Warn("low disk space at destination", "path", path, "available", avail, "needed", need)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating archive file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var wc io.WriteCloser
	if codec != nil {
		if wc, err = codec.Compress(f); err != nil {
			return "", err
		}
		w = wc
	}

	if err := a.EncodeTo(w); err != nil {
		return "", err
	}
	if wc != nil {
		if err := wc.Close(); err != nil {
			return "", fmt.Errorf("flushing %s stream: %w", codec.Name(), err)
		}
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing archive file: %w", err)
	}

	logger.Info("archive written", "path", path, "entries", len(a.Entries))
	return path, nil
}
