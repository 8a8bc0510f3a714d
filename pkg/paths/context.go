package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Environment overrides for the base directories. Useful for tests and
// for replaying an archive into a staging root.
const (
	EnvHome      = "RCONF_HOME"
	EnvConfigDir = "RCONF_CONFIG_DIR"
)

// ErrNoBaseDir is returned when a base directory for a category cannot
// be determined on this machine.
var ErrNoBaseDir = errors.New("could not determine base directory")

// UserContext carries the current user's home and configuration
// directories. It is looked up once per run and passed explicitly into
// every operation that resolves paths, so one invocation never observes
// two different snapshots of the environment.
type UserContext struct {
	HomeDir   string
	ConfigDir string
}

// CurrentUser resolves the invoking user's base directories, honoring
// the RCONF_HOME and RCONF_CONFIG_DIR overrides before falling back to
// the platform conventions (XDG on Linux, Library paths on macOS).
func CurrentUser() (UserContext, error) {
	home := os.Getenv(EnvHome)
	if home == "" {
		home = xdg.Home
	}
	if home == "" {
		return UserContext{}, fmt.Errorf("%w: home", ErrNoBaseDir)
	}

	config := os.Getenv(EnvConfigDir)
	if config == "" {
		config = xdg.ConfigHome
	}
	if config == "" {
		return UserContext{}, fmt.Errorf("%w: config", ErrNoBaseDir)
	}

	return UserContext{HomeDir: home, ConfigDir: config}, nil
}

// ManifestPath returns the default manifest location for this context.
func (c UserContext) ManifestPath() string {
	return filepath.Join(c.ConfigDir, ManifestEntryName)
}

// baseDir returns the base directory for a category, or "" for absolute.
func (c UserContext) baseDir(cat Category) (string, error) {
	switch cat {
	case CategoryHome:
		if c.HomeDir == "" {
			return "", fmt.Errorf("%w: home", ErrNoBaseDir)
		}
		return c.HomeDir, nil
	case CategoryConfig:
		if c.ConfigDir == "" {
			return "", fmt.Errorf("%w: config", ErrNoBaseDir)
		}
		return c.ConfigDir, nil
	case CategoryAbsolute:
		return "", nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownCategory, cat)
	}
}

// Resolve maps a record onto a concrete filesystem path for this user.
// The containment check from NewRecord is repeated here so that records
// decoded from a foreign archive cannot climb out of their base either.
func (c UserContext) Resolve(rec Record) (string, error) {
	rec, err := NewRecord(rec.Category, rec.Path)
	if err != nil {
		return "", err
	}

	base, err := c.baseDir(rec.Category)
	if err != nil {
		return "", err
	}
	if rec.Category == CategoryAbsolute {
		return filepath.FromSlash(rec.Path), nil
	}

	resolved := filepath.Join(base, filepath.FromSlash(rec.Path))
	if resolved != base && !strings.HasPrefix(resolved, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrEscapesBase, rec.Path)
	}
	return resolved, nil
}

// DeriveRecord is the inverse of Resolve: given an absolute path on this
// machine and the category it was reached through, it produces the
// machine-independent record to store in an archive.
func (c UserContext) DeriveRecord(absPath string, cat Category) (Record, error) {
	if cat == CategoryAbsolute {
		return NewRecord(cat, filepath.ToSlash(absPath))
	}

	base, err := c.baseDir(cat)
	if err != nil {
		return Record{}, err
	}
	rel, err := filepath.Rel(base, absPath)
	if err != nil {
		return Record{}, fmt.Errorf("deriving %s record for %q: %w", cat, absPath, err)
	}
	return NewRecord(cat, filepath.ToSlash(rel))
}
