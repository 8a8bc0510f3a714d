// Package pkg is the top-level facade tying the build and install
// pipelines together for the CLI and for embedders.
package pkg

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/rconf-io/rconf/pkg/archive"
	"github.com/rconf-io/rconf/pkg/archive/ops"
	"github.com/rconf-io/rconf/pkg/install"
	"github.com/rconf-io/rconf/pkg/manifest"
	"github.com/rconf-io/rconf/pkg/paths"
	"github.com/rconf-io/rconf/pkg/pkgmgr"
	"github.com/rconf-io/rconf/pkg/script"
)

// BuildArchive loads a manifest, builds the archive for the current
// user and writes it to outputPath ("" manifestPath selects the default
// manifest location). It returns the normalized path written and the
// build result with its warnings.
func BuildArchive(manifestPath, outputPath, compress string, logger hclog.Logger) (string, *archive.BuildResult, error) {
	user, err := paths.CurrentUser()
	if err != nil {
		return "", nil, err
	}
	if manifestPath == "" {
		manifestPath = user.ManifestPath()
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return "", nil, err
	}
	codec, err := ops.ForName(compress)
	if err != nil {
		return "", nil, err
	}

	result, err := archive.Build(m, user, logger)
	if err != nil {
		return "", nil, err
	}

	written, err := result.Archive.WriteFile(outputPath, codec, logger)
	if err != nil {
		return "", nil, err
	}
	return written, result, nil
}

// InstallArchive reads an archive file and replays it for the current
// user, returning the per-entry and per-phase report.
func InstallArchive(ctx context.Context, archivePath string, logger hclog.Logger) (*install.Report, error) {
	a, user, err := loadForApply(archivePath)
	if err != nil {
		return nil, err
	}
	return newInstaller(logger).Install(ctx, a, user)
}

// UninstallArchive drives the archive's uninstall template against the
// package manager. Placed files are left alone.
func UninstallArchive(ctx context.Context, archivePath string, logger hclog.Logger) (*install.Report, error) {
	a, user, err := loadForApply(archivePath)
	if err != nil {
		return nil, err
	}
	return newInstaller(logger).Uninstall(ctx, a, user)
}

// WriteScript reads an archive and emits its standalone install script.
func WriteScript(archivePath, outputPath string) error {
	a, err := archive.Read(archivePath)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = script.DefaultName
	}
	if err := script.WriteFile(a, outputPath); err != nil {
		return err
	}
	fmt.Println("wrote", outputPath)
	return nil
}

func loadForApply(archivePath string) (*archive.Archive, paths.UserContext, error) {
	a, err := archive.Read(archivePath)
	if err != nil {
		return nil, paths.UserContext{}, err
	}
	user, err := paths.CurrentUser()
	if err != nil {
		return nil, paths.UserContext{}, err
	}
	return a, user, nil
}

func newInstaller(logger hclog.Logger) *install.Installer {
	invoker := &pkgmgr.ExecInvoker{
		Logger: logger,
		Stdin:  os.Stdin,
		Tee:    os.Stdout,
	}
	return install.New(invoker, logger)
}
