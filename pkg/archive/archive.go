// Package archive builds, serializes and reads configuration archives.
//
// An archive is a plain POSIX tar stream, optionally compressed, holding
// the manifest as its first entry (".rconf") followed by one entry per
// packaged file. Home-category files live under "home/", config files
// under "config/", and absolute files at the tar root with their leading
// slash stripped, so the layout stays readable with stock tar tooling.
package archive

import (
	"errors"
	"io/fs"

	"github.com/rconf-io/rconf/pkg/manifest"
	"github.com/rconf-io/rconf/pkg/paths"
)

var (
	// ErrCorrupt is returned when an archive cannot be parsed
	ErrCorrupt = errors.New("corrupt archive")

	// ErrNoManifest is returned when an archive lacks the embedded
	// manifest entry
	ErrNoManifest = errors.New("archive has no embedded manifest")

	// ErrMissingSource marks a declared file absent at build time; it is
	// recorded as a warning, never a build failure
	ErrMissingSource = errors.New("source file does not exist")

	// ErrEmpty is returned when a build yields no entries and no packages
	ErrEmpty = errors.New("archive would be empty")
)

// Suffix is the mandatory archive filename suffix.
const Suffix = ".tar"

// Entry is one packaged file: its machine-independent record, the
// permission bits captured at build time, and the raw content.
type Entry struct {
	Record paths.Record
	Mode   fs.FileMode
	Data   []byte
}

// Archive is the self-describing artifact: the embedded manifest plus
// the packaged entries in build order. Archives are immutable once
// built; rebuilding produces a new value.
type Archive struct {
	Manifest *manifest.Manifest
	Entries  []Entry
}

// Warning records a non-fatal problem encountered during a build.
type Warning struct {
	Record paths.Record
	Err    error
}

// BuildResult couples a built archive with the warnings accumulated
// while producing it.
type BuildResult struct {
	Archive  *Archive
	Warnings []Warning
}
