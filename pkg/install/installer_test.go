package install

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rconf-io/rconf/pkg/archive"
	"github.com/rconf-io/rconf/pkg/manifest"
	"github.com/rconf-io/rconf/pkg/paths"
	"github.com/rconf-io/rconf/pkg/pkgmgr"
)

type invocation struct {
	name     string
	template []string
	packages []string
}

// fakeInvoker records invocations instead of spawning processes.
type fakeInvoker struct {
	calls    []invocation
	exitCode int
	err      error
}

func (f *fakeInvoker) Invoke(ctx context.Context, name string, template, packages []string) (pkgmgr.Result, error) {
	f.calls = append(f.calls, invocation{name: name, template: template, packages: packages})
	return pkgmgr.Result{
		Command:  append([]string{name}, pkgmgr.ExpandArgs(template, packages)...),
		ExitCode: f.exitCode,
	}, f.err
}

func testContext(t *testing.T) paths.UserContext {
	t.Helper()
	home := t.TempDir()
	config := filepath.Join(home, ".config")
	require.NoError(t, os.MkdirAll(config, 0o755))
	return paths.UserContext{HomeDir: home, ConfigDir: config}
}

func entry(cat paths.Category, p, content string) archive.Entry {
	return archive.Entry{
		Record: paths.Record{Category: cat, Path: p},
		Mode:   0o644,
		Data:   []byte(content),
	}
}

func TestInstallPlacesFilesAndRunsManager(t *testing.T) {
	ctx := testContext(t)
	inv := &fakeInvoker{}

	a := &archive.Archive{
		Manifest: &manifest.Manifest{Manager: &manifest.PackageManager{
			Name:        "pacman",
			Packages:    []string{"vim", "git"},
			InstallArgs: []string{"-S", "$PACKAGES"},
			UpgradeArgs: []string{"-Syu"},
		}},
		Entries: []archive.Entry{
			entry(paths.CategoryHome, ".bashrc", "export EDITOR=vim\n"),
			entry(paths.CategoryConfig, "git/config", "[user]\n"),
		},
	}

	report, err := New(inv, nil).Install(context.Background(), a, ctx)
	require.NoError(t, err)

	require.Len(t, report.Files, 2)
	for _, f := range report.Files {
		assert.Equal(t, StatusWritten, f.Status)
		require.NoError(t, f.Err)
	}

	data, err := os.ReadFile(filepath.Join(ctx.HomeDir, ".bashrc"))
	require.NoError(t, err)
	assert.Equal(t, "export EDITOR=vim\n", string(data))

	// Parent directories are created as needed.
	data, err = os.ReadFile(filepath.Join(ctx.ConfigDir, "git/config"))
	require.NoError(t, err)
	assert.Equal(t, "[user]\n", string(data))

	// Install runs first with the package list, then upgrade without it.
	require.Len(t, inv.calls, 2)
	assert.Equal(t, invocation{"pacman", []string{"-S", "$PACKAGES"}, []string{"vim", "git"}}, inv.calls[0])
	assert.Equal(t, invocation{"pacman", []string{"-Syu"}, nil}, inv.calls[1])

	require.Len(t, report.Phases, 2)
	assert.Equal(t, PhaseInstall, report.Phases[0].Phase)
	assert.Equal(t, PhaseUpgrade, report.Phases[1].Phase)
	assert.True(t, report.Clean())
}

func TestInstallContinuesPastEntryFailure(t *testing.T) {
	ctx := testContext(t)
	inv := &fakeInvoker{}

	// A regular file where entry 2 needs a parent directory makes that
	// entry fail while its neighbors succeed.
	require.NoError(t, os.WriteFile(filepath.Join(ctx.HomeDir, "blocked"), []byte("file"), 0o644))

	a := &archive.Archive{
		Manifest: &manifest.Manifest{Manager: &manifest.PackageManager{
			Name:        "apt-get",
			Packages:    []string{"vim"},
			InstallArgs: []string{"install", "$PACKAGES"},
		}},
		Entries: []archive.Entry{
			entry(paths.CategoryHome, "a/one", "1\n"),
			entry(paths.CategoryHome, "blocked/two", "2\n"),
			entry(paths.CategoryHome, "c/three", "3\n"),
		},
	}

	report, err := New(inv, nil).Install(context.Background(), a, ctx)
	require.NoError(t, err)

	require.Len(t, report.Files, 3)
	assert.Equal(t, StatusWritten, report.Files[0].Status)
	assert.Equal(t, StatusFailed, report.Files[1].Status)
	require.Error(t, report.Files[1].Err)
	assert.Equal(t, StatusWritten, report.Files[2].Status)

	// The package phase still executes after a partial file phase.
	require.Len(t, inv.calls, 1)
	assert.Equal(t, 2, report.Written())
	assert.Equal(t, 1, report.Failures())
	assert.False(t, report.Clean())
}

func TestInstallOverwritesExistingFiles(t *testing.T) {
	ctx := testContext(t)
	dest := filepath.Join(ctx.HomeDir, ".bashrc")
	require.NoError(t, os.WriteFile(dest, []byte("old\n"), 0o600))

	a := &archive.Archive{
		Manifest: &manifest.Manifest{},
		Entries:  []archive.Entry{entry(paths.CategoryHome, ".bashrc", "new\n")},
	}

	report, err := New(&fakeInvoker{}, nil).Install(context.Background(), a, ctx)
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.Equal(t, StatusOverwritten, report.Files[0].Status)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(data))

	// The captured mode replaces the old one even on overwrite.
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestInstallSkipsPackagePhaseWithoutManager(t *testing.T) {
	ctx := testContext(t)
	inv := &fakeInvoker{}

	a := &archive.Archive{
		Manifest: &manifest.Manifest{},
		Entries:  []archive.Entry{entry(paths.CategoryHome, ".bashrc", "x\n")},
	}

	report, err := New(inv, nil).Install(context.Background(), a, ctx)
	require.NoError(t, err)
	assert.Empty(t, inv.calls)
	assert.Empty(t, report.Phases)
}

func TestInstallRecordsManagerFailureWithoutRollback(t *testing.T) {
	ctx := testContext(t)
	inv := &fakeInvoker{exitCode: 100}

	a := &archive.Archive{
		Manifest: &manifest.Manifest{Manager: &manifest.PackageManager{
			Name:        "apt-get",
			Packages:    []string{"vim"},
			InstallArgs: []string{"install", "$PACKAGES"},
		}},
		Entries: []archive.Entry{entry(paths.CategoryHome, ".bashrc", "x\n")},
	}

	report, err := New(inv, nil).Install(context.Background(), a, ctx)
	require.NoError(t, err, "a failed package phase is reported, not fatal")

	require.Len(t, report.Phases, 1)
	assert.True(t, report.Phases[0].Failed())
	assert.Equal(t, 100, report.Phases[0].Result.ExitCode)

	// File-phase writes stay in place.
	_, statErr := os.Stat(filepath.Join(ctx.HomeDir, ".bashrc"))
	require.NoError(t, statErr)
}

func TestInstallResolveFailureIsPerEntry(t *testing.T) {
	ctx := testContext(t)

	a := &archive.Archive{
		Manifest: &manifest.Manifest{},
		Entries: []archive.Entry{
			{Record: paths.Record{Category: paths.CategoryHome, Path: "../escape"}, Data: []byte("x")},
			entry(paths.CategoryHome, ".bashrc", "ok\n"),
		},
	}

	report, err := New(&fakeInvoker{}, nil).Install(context.Background(), a, ctx)
	require.NoError(t, err)

	require.Len(t, report.Files, 2)
	assert.Equal(t, StatusFailed, report.Files[0].Status)
	require.ErrorIs(t, report.Files[0].Err, paths.ErrEscapesBase)
	assert.Equal(t, StatusWritten, report.Files[1].Status)
}

func TestUninstall(t *testing.T) {
	inv := &fakeInvoker{}
	a := &archive.Archive{
		Manifest: &manifest.Manifest{Manager: &manifest.PackageManager{
			Name:          "pacman",
			Packages:      []string{"vim", "git"},
			UninstallArgs: []string{"-R", "$PACKAGES"},
		}},
	}

	report, err := New(inv, nil).Uninstall(context.Background(), a, testContext(t))
	require.NoError(t, err)

	require.Len(t, inv.calls, 1)
	assert.Equal(t, invocation{"pacman", []string{"-R", "$PACKAGES"}, []string{"vim", "git"}}, inv.calls[0])
	require.Len(t, report.Phases, 1)
	assert.Equal(t, PhaseUninstall, report.Phases[0].Phase)
}

func TestUninstallRequiresArgs(t *testing.T) {
	a := &archive.Archive{
		Manifest: &manifest.Manifest{Manager: &manifest.PackageManager{Name: "pacman"}},
	}

	_, err := New(&fakeInvoker{}, nil).Uninstall(context.Background(), a, testContext(t))
	require.ErrorIs(t, err, manifest.ErrFieldNotSet)

	a.Manifest.Manager = nil
	_, err = New(&fakeInvoker{}, nil).Uninstall(context.Background(), a, testContext(t))
	require.ErrorIs(t, err, manifest.ErrFieldNotSet)
}
