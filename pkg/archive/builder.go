package archive

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/rconf-io/rconf/pkg/manifest"
	"github.com/rconf-io/rconf/pkg/paths"
)

// Build resolves every declared manifest path against the given user
// context and packages the resulting files into an archive. The declared
// order is preserved: home entries first, then config, then absolute.
//
// Duplicate detection runs over the resolved paths before any file is
// read: an entry declared twice collapses to one, while two different
// entries resolving to the same path abort the build. A missing source
// file is recorded as a warning and skipped; directories expand
// recursively into one entry per regular file.
func Build(m *manifest.Manifest, ctx paths.UserContext, logger hclog.Logger) (*BuildResult, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	recs, err := m.Records()
	if err != nil {
		return nil, err
	}

	// Resolve everything up front so validation failures surface before
	// any I/O happens.
	type source struct {
		rec      paths.Record
		resolved string
	}
	var sources []source
	resolvedBy := make(map[string]paths.Record, len(recs))

	for _, rec := range recs {
		resolved, err := ctx.Resolve(rec)
		if err != nil {
			return nil, err
		}
		if prev, ok := resolvedBy[resolved]; ok {
			if prev == rec {
				logger.Debug("collapsing duplicate manifest entry", "record", rec.String())
				continue
			}
			return nil, fmt.Errorf("%w: %q declared as both %s and %s",
				manifest.ErrDuplicatePath, resolved, prev.String(), rec.String())
		}
		resolvedBy[resolved] = rec
		sources = append(sources, source{rec: rec, resolved: resolved})
	}

	result := &BuildResult{Archive: &Archive{Manifest: m}}

	for _, src := range sources {
		info, err := os.Stat(src.resolved)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("skipping missing source file", "record", src.rec.String(), "path", src.resolved)
				result.Warnings = append(result.Warnings, Warning{
					Record: src.rec,
					Err:    fmt.Errorf("%w: %s", ErrMissingSource, src.resolved),
				})
				continue
			}
			return nil, fmt.Errorf("inspecting %s: %w", src.resolved, err)
		}

		if info.IsDir() {
			if err := appendTree(result, ctx, src.rec.Category, src.resolved, logger); err != nil {
				return nil, err
			}
			continue
		}

		if err := appendFile(result.Archive, src.rec, src.resolved, info.Mode()); err != nil {
			return nil, err
		}
		logger.Debug("packaged file", "record", src.rec.String(), "size", info.Size())
	}

	if len(result.Archive.Entries) == 0 && len(m.Packages()) == 0 {
		return nil, ErrEmpty
	}

	logger.Info("archive built",
		"entries", len(result.Archive.Entries),
		"warnings", len(result.Warnings),
		"packages", len(m.Packages()),
	)
	return result, nil
}

// appendTree expands a directory into one entry per regular file it
// contains. WalkDir visits names in lexical order, which keeps rebuilds
// of an unchanged tree byte-identical.
func appendTree(result *BuildResult, ctx paths.UserContext, cat paths.Category, root string, logger hclog.Logger) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", root, err)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rec, err := ctx.DeriveRecord(p, cat)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", p, err)
		}
		if err := appendFile(result.Archive, rec, p, info.Mode()); err != nil {
			return err
		}
		logger.Debug("packaged file", "record", rec.String(), "size", info.Size())
		return nil
	})
}

// appendFile reads one regular file into the archive.
func appendFile(a *Archive, rec paths.Record, path string, mode fs.FileMode) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	a.Entries = append(a.Entries, Entry{
		Record: rec,
		Mode:   mode.Perm(),
		Data:   data,
	})
	return nil
}
