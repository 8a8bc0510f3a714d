// Package manifest models the declarative configuration that drives
// archive builds: which files to package, grouped by path category, and
// which package manager to drive on install. The on-disk form is TOML,
// conventionally a ".rconf" file in the user's configuration directory.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/rconf-io/rconf/pkg/paths"
)

var (
	// ErrNoExecutable is returned when a manager section has an empty name
	ErrNoExecutable = errors.New("package manager name must not be empty")

	// ErrDuplicatePackage is returned when the package list repeats a name
	ErrDuplicatePackage = errors.New("duplicate package in package list")

	// ErrDuplicatePath is returned when two different manifest entries
	// resolve to the same filesystem path
	ErrDuplicatePath = errors.New("duplicate resolved path in manifest")

	// ErrFieldNotSet is returned when an operation requires a manifest
	// field that was left empty
	ErrFieldNotSet = errors.New("required manifest field not set")
)

// PathSet holds the declared configuration file paths, one ordered list
// per category.
type PathSet struct {
	Home     []string `toml:"home,omitempty"`
	Config   []string `toml:"config,omitempty"`
	Absolute []string `toml:"absolute,omitempty"`
}

// PackageManager describes how to drive the external package manager:
// the command to run and the argument templates for each phase. Argument
// templates may contain the pkgmgr package-list placeholder; an empty
// args list means the phase is a no-op.
type PackageManager struct {
	Name          string   `toml:"name"`
	Packages      []string `toml:"packages,omitempty"`
	InstallArgs   []string `toml:"install_args,omitempty"`
	UninstallArgs []string `toml:"un_install_args,omitempty"`
	UpgradeArgs   []string `toml:"upgrade_args,omitempty"`
}

// Manifest is the validated in-memory configuration. Manager is nil when
// the manifest only packages files.
type Manifest struct {
	Paths   PathSet         `toml:"paths"`
	Manager *PackageManager `toml:"manager,omitempty"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a TOML manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Encode serializes the manifest back to TOML, as embedded in archives.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return data, nil
}

// Validate checks the structural invariants: every declared path must
// form a valid record for its category, and a present manager section
// must name an executable and list each package at most once.
func (m *Manifest) Validate() error {
	if _, err := m.Records(); err != nil {
		return err
	}

	if m.Manager != nil {
		if strings.TrimSpace(m.Manager.Name) == "" {
			return ErrNoExecutable
		}
		seen := make(map[string]struct{}, len(m.Manager.Packages))
		for _, pkg := range m.Manager.Packages {
			if _, dup := seen[pkg]; dup {
				return fmt.Errorf("%w: %q", ErrDuplicatePackage, pkg)
			}
			seen[pkg] = struct{}{}
		}
	}

	return nil
}

// Records returns the declared paths as path records in build order:
// home entries first, then config, then absolute, each list in declared
// order. Category-level path validation happens here, before any I/O.
func (m *Manifest) Records() ([]paths.Record, error) {
	var recs []paths.Record

	for _, group := range []struct {
		cat   paths.Category
		items []string
	}{
		{paths.CategoryHome, m.Paths.Home},
		{paths.CategoryConfig, m.Paths.Config},
		{paths.CategoryAbsolute, m.Paths.Absolute},
	} {
		for _, p := range group.items {
			rec, err := paths.NewRecord(group.cat, p)
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
		}
	}

	return recs, nil
}

// Packages returns the declared package list, or nil without a manager.
func (m *Manifest) Packages() []string {
	if m.Manager == nil {
		return nil
	}
	return m.Manager.Packages
}
