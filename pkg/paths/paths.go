// Package paths maps manifest path records onto concrete filesystem
// locations. A record carries a category (home, config, absolute) plus a
// slash-separated path; resolution joins it against the current user's
// base directories so an archive built on one machine can be replayed on
// another.
package paths

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrEscapesBase is returned when a relative path climbs out of its
	// base directory via ".." segments
	ErrEscapesBase = errors.New("path escapes its base directory")

	// ErrNotAbsolute is returned for an absolute-category path that is
	// not actually absolute
	ErrNotAbsolute = errors.New("absolute-category path is not absolute")

	// ErrNotRelative is returned for a home- or config-category path that
	// is absolute
	ErrNotRelative = errors.New("relative-category path is absolute")

	// ErrUnknownCategory is returned for a category value outside the
	// known set
	ErrUnknownCategory = errors.New("unknown path category")
)

// Category identifies which base directory a record resolves against.
type Category uint8

const (
	CategoryHome Category = iota
	CategoryConfig
	CategoryAbsolute
)

// String returns the category name as it appears in archives and reports.
func (c Category) String() string {
	switch c {
	case CategoryHome:
		return "home"
	case CategoryConfig:
		return "config"
	case CategoryAbsolute:
		return "absolute"
	default:
		return fmt.Sprintf("category(%d)", c)
	}
}

// Record identifies one packaged file independently of any machine: the
// manifest-relative path plus its category tag. Paths are always
// slash-separated, relative for home/config and absolute for absolute.
type Record struct {
	Category Category
	Path     string
}

// NewRecord validates a manifest path string for the given category and
// returns its record form. Relative paths must stay inside their base
// directory; absolute-category paths must be absolute.
func NewRecord(cat Category, p string) (Record, error) {
	switch cat {
	case CategoryHome, CategoryConfig:
		if path.IsAbs(p) {
			return Record{}, fmt.Errorf("%w: %q", ErrNotRelative, p)
		}
		clean := path.Clean(p)
		if clean == ".." || strings.HasPrefix(clean, "../") {
			return Record{}, fmt.Errorf("%w: %q", ErrEscapesBase, p)
		}
		return Record{Category: cat, Path: clean}, nil
	case CategoryAbsolute:
		if !path.IsAbs(p) {
			return Record{}, fmt.Errorf("%w: %q", ErrNotAbsolute, p)
		}
		return Record{Category: cat, Path: path.Clean(p)}, nil
	default:
		return Record{}, fmt.Errorf("%w: %d", ErrUnknownCategory, cat)
	}
}

// String renders the record for logs and reports, e.g. "home:.bashrc".
func (r Record) String() string {
	return r.Category.String() + ":" + r.Path
}

// TarPath returns the path under which the record's file is stored inside
// an archive: home files under "home/", config files under "config/",
// absolute files at the archive root without their leading slash.
func (r Record) TarPath() string {
	switch r.Category {
	case CategoryHome:
		return path.Join("home", r.Path)
	case CategoryConfig:
		return path.Join("config", r.Path)
	default:
		return strings.TrimPrefix(r.Path, "/")
	}
}

// RecordFromTarPath reverses TarPath. The second return value is false
// for archive entries that do not describe a packaged file: the embedded
// manifest, and any dot-prefixed root-level name, which is reserved for
// auxiliary metadata added by other format versions.
func RecordFromTarPath(name string) (Record, bool) {
	name = path.Clean(name)
	if name == "." || strings.HasPrefix(name, ".") {
		return Record{}, false
	}

	switch {
	case name == "home" || name == "config":
		return Record{}, false
	case strings.HasPrefix(name, "home/"):
		return Record{Category: CategoryHome, Path: strings.TrimPrefix(name, "home/")}, true
	case strings.HasPrefix(name, "config/"):
		return Record{Category: CategoryConfig, Path: strings.TrimPrefix(name, "config/")}, true
	default:
		return Record{Category: CategoryAbsolute, Path: "/" + name}, true
	}
}

// ManifestEntryName is the archive entry holding the embedded manifest.
const ManifestEntryName = ".rconf"
