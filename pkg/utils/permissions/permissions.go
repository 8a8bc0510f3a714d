// Package permissions provides utilities for parsing and formatting
// file permission bits.
package permissions

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// Defaults applied when nothing more specific is known.
const (
	DefaultFilePerms fs.FileMode = 0o644
	DefaultDirPerms  fs.FileMode = 0o755
)

// ParseOctalString parses an octal permission string such as "755",
// "0755" or "0o755". The empty string yields the file default.
func ParseOctalString(s string) (fs.FileMode, error) {
	if s == "" {
		return DefaultFilePerms, nil
	}

	trimmed := strings.TrimPrefix(s, "0o")
	trimmed = strings.TrimPrefix(trimmed, "0")
	if trimmed == "" {
		trimmed = "0"
	}

	val, err := strconv.ParseUint(trimmed, 8, 32)
	if err != nil {
		return DefaultFilePerms, fmt.Errorf("invalid permission string %q: %w", s, err)
	}
	return fs.FileMode(val), nil
}

// FormatOctal formats permission bits as a chmod-compatible string.
func FormatOctal(perm fs.FileMode) string {
	return fmt.Sprintf("%04o", perm.Perm())
}

// IsExecutable reports whether the owner execute bit is set.
func IsExecutable(perm fs.FileMode) bool {
	return perm&0o100 != 0
}
