package pkg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rconf-io/rconf/pkg/install"
	"github.com/rconf-io/rconf/pkg/paths"
)

func fakeUser(t *testing.T) (string, string) {
	t.Helper()
	home := t.TempDir()
	config := filepath.Join(home, ".config")
	require.NoError(t, os.MkdirAll(config, 0o755))
	t.Setenv(paths.EnvHome, home)
	t.Setenv(paths.EnvConfigDir, config)
	return home, config
}

// The full pipeline: build an archive on one "machine", install it on
// another, with "echo" standing in for the package manager.
func TestArchiveThenInstall(t *testing.T) {
	home, config := fakeUser(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".bashrc"), []byte("export EDITOR=vim\n"), 0o644))

	manifestTOML := `
[paths]
home = [".bashrc"]

[manager]
name = "echo"
packages = ["vim", "git"]
install_args = ["install", "$PACKAGES"]
`
	require.NoError(t, os.WriteFile(filepath.Join(config, ".rconf"), []byte(manifestTOML), 0o644))

	out, result, err := BuildArchive("", filepath.Join(t.TempDir(), "dotfiles"), "none", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "dotfiles.tar"))
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Archive.Entries, 1)

	// A different user context on the "target machine".
	home2, _ := fakeUser(t)

	report, err := InstallArchive(context.Background(), out, nil)
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.Equal(t, install.StatusWritten, report.Files[0].Status)

	data, err := os.ReadFile(filepath.Join(home2, ".bashrc"))
	require.NoError(t, err)
	assert.Equal(t, "export EDITOR=vim\n", string(data))

	// The package phase ran "echo install vim git" and succeeded.
	require.Len(t, report.Phases, 1)
	assert.Equal(t, install.PhaseInstall, report.Phases[0].Phase)
	assert.Equal(t, 0, report.Phases[0].Result.ExitCode)
	assert.Equal(t, "install vim git\n", report.Phases[0].Result.Stdout)
	assert.True(t, report.Clean())
}

func TestWriteScript(t *testing.T) {
	home, config := fakeUser(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".bashrc"), []byte("x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(config, ".rconf"), []byte("[paths]\nhome = [\".bashrc\"]\n"), 0o644))

	out, _, err := BuildArchive("", filepath.Join(t.TempDir(), "dotfiles"), "none", nil)
	require.NoError(t, err)

	scriptPath := filepath.Join(t.TempDir(), "install.sh")
	require.NoError(t, WriteScript(out, scriptPath))

	content, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `cp home/.bashrc "$HOME"/.bashrc`)
}
