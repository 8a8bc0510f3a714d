package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/rconf-io/rconf/pkg/archive/ops"
	"github.com/rconf-io/rconf/pkg/manifest"
	"github.com/rconf-io/rconf/pkg/paths"
)

// Read loads an archive file back into memory without touching anything
// else on the filesystem. Compression is detected from the filename
// extension; a plain ".tar" name reads the stream as-is.
func Read(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	return Decode(f, ops.ForPath(path))
}

// Decode parses an archive from a reader. Entries whose names are not
// recognized as packaged files (directories, auxiliary metadata from
// other format versions) are skipped; a missing or invalid embedded
// manifest is fatal.
func Decode(r io.Reader, codec ops.Codec) (*Archive, error) {
	if codec != nil {
		rc, err := codec.Decompress(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		defer rc.Close()
		r = rc
	}

	a := &Archive{}
	tr := tar.NewReader(r)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrCorrupt, hdr.Name, err)
		}

		if hdr.Name == paths.ManifestEntryName {
			m, err := manifest.Parse(data)
			if err != nil {
				return nil, fmt.Errorf("%w: embedded manifest: %v", ErrCorrupt, err)
			}
			a.Manifest = m
			continue
		}

		rec, ok := paths.RecordFromTarPath(hdr.Name)
		if !ok {
			continue
		}
		a.Entries = append(a.Entries, Entry{
			Record: rec,
			Mode:   fs.FileMode(hdr.Mode).Perm(),
			Data:   data,
		})
	}

	if a.Manifest == nil {
		return nil, errors.Join(ErrCorrupt, ErrNoManifest)
	}
	return a, nil
}
