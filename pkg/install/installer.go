// Package install replays a configuration archive onto the current
// machine: first the file phase, placing every entry at its re-resolved
// destination, then the package phase, driving the external package
// manager. Both phases are best-effort; every outcome lands in the
// report and nothing is rolled back.
package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/rconf-io/rconf/pkg/archive"
	"github.com/rconf-io/rconf/pkg/manifest"
	"github.com/rconf-io/rconf/pkg/paths"
	"github.com/rconf-io/rconf/pkg/pkgmgr"
	"github.com/rconf-io/rconf/pkg/utils/permissions"
)

// Installer orchestrates the two-phase apply. The Invoker is injectable
// so tests never spawn a real package manager.
type Installer struct {
	invoker pkgmgr.Invoker
	logger  hclog.Logger
}

// New creates an Installer. A nil invoker falls back to os/exec.
func New(invoker pkgmgr.Invoker, logger hclog.Logger) *Installer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if invoker == nil {
		invoker = &pkgmgr.ExecInvoker{Logger: logger}
	}
	return &Installer{invoker: invoker, logger: logger}
}

// Install applies the archive for the given user context. Entries are
// written in archive order; one entry failing never aborts the phase.
// The package phase runs when the file phase placed at least one file
// or the manifest declares packages: install args first, then upgrade
// args when present. Package lists are expanded into the install
// template only, matching how upgrades address the whole system.
func (i *Installer) Install(ctx context.Context, a *archive.Archive, user paths.UserContext) (*Report, error) {
	report := &Report{}

	for _, entry := range a.Entries {
		outcome := i.placeEntry(entry, user)
		if outcome.Err != nil {
			i.logger.Warn("entry failed", "record", entry.Record.String(), "error", outcome.Err)
		} else {
			i.logger.Debug("entry placed", "record", entry.Record.String(), "path", outcome.Path, "status", outcome.Status.String())
		}
		report.Files = append(report.Files, outcome)
	}

	mgr := a.Manifest.Manager
	if mgr == nil || (report.Written() == 0 && len(mgr.Packages) == 0) {
		return report, nil
	}

	if len(mgr.InstallArgs) > 0 {
		report.Phases = append(report.Phases,
			i.runPhase(ctx, PhaseInstall, mgr.Name, mgr.InstallArgs, mgr.Packages))
	}
	if len(mgr.UpgradeArgs) > 0 {
		report.Phases = append(report.Phases,
			i.runPhase(ctx, PhaseUpgrade, mgr.Name, mgr.UpgradeArgs, nil))
	}

	return report, nil
}

// Uninstall drives the package manager's uninstall template for the
// archive's package list. It never touches placed files. A manifest
// without uninstall args cannot support the operation.
func (i *Installer) Uninstall(ctx context.Context, a *archive.Archive, user paths.UserContext) (*Report, error) {
	mgr := a.Manifest.Manager
	if mgr == nil {
		return nil, fmt.Errorf("%w: manager", manifest.ErrFieldNotSet)
	}
	if len(mgr.UninstallArgs) == 0 {
		return nil, fmt.Errorf("%w: un_install_args", manifest.ErrFieldNotSet)
	}

	report := &Report{}
	report.Phases = append(report.Phases,
		i.runPhase(ctx, PhaseUninstall, mgr.Name, mgr.UninstallArgs, mgr.Packages))
	return report, nil
}

// placeEntry writes one archive entry to its destination, creating
// parent directories as needed and restoring the captured mode.
// Existing destination files are overwritten unconditionally.
func (i *Installer) placeEntry(entry archive.Entry, user paths.UserContext) FileOutcome {
	outcome := FileOutcome{Record: entry.Record}

	dest, err := user.Resolve(entry.Record)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}
	outcome.Path = dest

	outcome.Status = StatusWritten
	if _, err := os.Stat(dest); err == nil {
		outcome.Status = StatusOverwritten
	}

	mode := entry.Mode
	if mode == 0 {
		mode = permissions.DefaultFilePerms
	}

	if err := os.MkdirAll(filepath.Dir(dest), permissions.DefaultDirPerms); err != nil {
		outcome.Status = StatusFailed
		outcome.Err = fmt.Errorf("creating parent directory: %w", err)
		return outcome
	}
	if err := os.WriteFile(dest, entry.Data, mode); err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}
	// WriteFile only applies the mode on creation; enforce it on
	// overwrites too.
	if err := os.Chmod(dest, mode); err != nil {
		outcome.Status = StatusFailed
		outcome.Err = fmt.Errorf("restoring mode: %w", err)
	}

	return outcome
}

func (i *Installer) runPhase(ctx context.Context, phase Phase, name string, template, packages []string) PhaseOutcome {
	outcome := PhaseOutcome{Phase: phase}
	outcome.Result, outcome.Err = i.invoker.Invoke(ctx, name, template, packages)

	if outcome.Failed() {
		i.logger.Warn("package phase failed", "phase", string(phase),
			"exit_code", outcome.Result.ExitCode, "error", outcome.Err)
	} else {
		i.logger.Info("package phase complete", "phase", string(phase))
	}
	return outcome
}
