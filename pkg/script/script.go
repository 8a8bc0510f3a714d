// Package script derives a standalone install script from an archive.
// The script replays the file placement and the package phase with
// nothing but a POSIX shell, for machines where the rconf binary is not
// available: unpack the tar, then run the script from the unpacked root.
package script

import (
	"fmt"
	"os"
	"strings"

	"github.com/rconf-io/rconf/pkg/archive"
	"github.com/rconf-io/rconf/pkg/paths"
	"github.com/rconf-io/rconf/pkg/pkgmgr"
	"github.com/rconf-io/rconf/pkg/utils/permissions"
	"github.com/rconf-io/rconf/pkg/utils/shellparse"
)

// DefaultName is the conventional filename for the generated script.
const DefaultName = "install.sh"

// Generate renders the install script for an archive. File entries are
// copied from their unpacked tar locations to the same destinations the
// installer would resolve, using $HOME and $XDG_CONFIG_HOME at run
// time; the package phase reuses the manifest's argument templates.
func Generate(a *archive.Archive) (string, error) {
	var b strings.Builder

	b.WriteString("#!/usr/bin/env bash\n")
	b.WriteString("# Generated by rconf. Run from the root of the unpacked archive.\n")
	b.WriteString("set -u\n\n")

	if len(a.Entries) > 0 {
		b.WriteString("CONFIG_DIR=\"${XDG_CONFIG_HOME:-$HOME/.config}\"\n\n")
	}

	for _, e := range a.Entries {
		src := shellparse.Join([]string{e.Record.TarPath()})
		dest, err := destExpr(e.Record)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&b, "mkdir -p \"$(dirname %s)\"\n", dest)
		fmt.Fprintf(&b, "cp %s %s\n", src, dest)
		fmt.Fprintf(&b, "chmod %s %s\n", permissions.FormatOctal(e.Mode), dest)
	}

	if mgr := a.Manifest.Manager; mgr != nil && len(mgr.InstallArgs) > 0 {
		words, err := shellparse.Split(mgr.Name)
		if err != nil {
			return "", fmt.Errorf("parsing package manager command %q: %w", mgr.Name, err)
		}
		argv := append(words, pkgmgr.ExpandArgs(mgr.InstallArgs, mgr.Packages)...)
		b.WriteString("\n")
		b.WriteString(shellparse.Join(argv))
		b.WriteString("\n")
	}

	return b.String(), nil
}

// WriteFile generates the script and writes it executable at path.
func WriteFile(a *archive.Archive, path string) error {
	content, err := Generate(a)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return fmt.Errorf("writing install script: %w", err)
	}
	return nil
}

// destExpr builds the shell expression for an entry's destination,
// keeping $HOME and $CONFIG_DIR unquoted so the shell expands them.
func destExpr(rec paths.Record) (string, error) {
	quoted := shellparse.Join([]string{rec.Path})
	switch rec.Category {
	case paths.CategoryHome:
		return "\"$HOME\"/" + quoted, nil
	case paths.CategoryConfig:
		return "\"$CONFIG_DIR\"/" + quoted, nil
	case paths.CategoryAbsolute:
		return quoted, nil
	default:
		return "", fmt.Errorf("%w: %d", paths.ErrUnknownCategory, rec.Category)
	}
}
