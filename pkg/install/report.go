package install

import (
	"fmt"
	"strings"

	"github.com/rconf-io/rconf/pkg/paths"
	"github.com/rconf-io/rconf/pkg/pkgmgr"
)

// FileStatus is the outcome of placing one archive entry.
type FileStatus uint8

const (
	StatusWritten FileStatus = iota
	StatusOverwritten
	StatusFailed
)

// String returns the status name used in reports.
func (s FileStatus) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusOverwritten:
		return "overwritten"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", s)
	}
}

// FileOutcome records the result of one file-phase entry.
type FileOutcome struct {
	Record paths.Record
	Path   string
	Status FileStatus
	Err    error
}

// Phase names one package manager invocation.
type Phase string

const (
	PhaseInstall   Phase = "install"
	PhaseUpgrade   Phase = "upgrade"
	PhaseUninstall Phase = "uninstall"
)

// PhaseOutcome records one package manager invocation. Err is set when
// the manager could not be spawned at all; a manager that ran and
// exited non-zero shows up through Result.ExitCode instead.
type PhaseOutcome struct {
	Phase  Phase
	Result pkgmgr.Result
	Err    error
}

// Failed reports whether the phase ended badly either way.
func (p PhaseOutcome) Failed() bool {
	return p.Err != nil || p.Result.ExitCode != 0
}

// Report enumerates every per-entry and per-phase outcome of an install
// or uninstall run. Overall success means "no fatal error", so callers
// inspect the report for partial failures even when the operation
// returned nil.
type Report struct {
	Files  []FileOutcome
	Phases []PhaseOutcome
}

// Written counts entries placed successfully, fresh or overwritten.
func (r *Report) Written() int {
	n := 0
	for _, f := range r.Files {
		if f.Status != StatusFailed {
			n++
		}
	}
	return n
}

// Failures counts entries that could not be placed.
func (r *Report) Failures() int {
	return len(r.Files) - r.Written()
}

// Clean reports whether nothing at all went wrong.
func (r *Report) Clean() bool {
	if r.Failures() > 0 {
		return false
	}
	for _, p := range r.Phases {
		if p.Failed() {
			return false
		}
	}
	return true
}

// Summary renders the report for terminal output, one line per entry
// and per phase.
func (r *Report) Summary() string {
	var b strings.Builder

	for _, f := range r.Files {
		if f.Err != nil {
			fmt.Fprintf(&b, "%-11s %s: %v\n", f.Status, f.Record, f.Err)
			continue
		}
		fmt.Fprintf(&b, "%-11s %s -> %s\n", f.Status, f.Record, f.Path)
	}

	for _, p := range r.Phases {
		switch {
		case p.Err != nil:
			fmt.Fprintf(&b, "%s phase: %v\n", p.Phase, p.Err)
		case p.Result.ExitCode != 0:
			fmt.Fprintf(&b, "%s phase: exit code %d\n", p.Phase, p.Result.ExitCode)
		default:
			fmt.Fprintf(&b, "%s phase: ok\n", p.Phase)
		}
	}

	fmt.Fprintf(&b, "%d/%d files placed", r.Written(), len(r.Files))
	return b.String()
}
