// Package pkgmgr wraps the external package manager behind a one-call
// interface: expand the package-list placeholder inside an argument
// template, spawn the executable, and report exit status plus captured
// output. A fake Invoker can be injected wherever spawning a real
// process is unwanted.
package pkgmgr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/hashicorp/go-hclog"

	"github.com/rconf-io/rconf/pkg/utils/shellparse"
)

// Placeholder is the argument-template element that expands to the
// package list, one argument per package.
const Placeholder = "$PACKAGES"

var (
	// ErrNotFound is returned when the executable does not exist; it is
	// deliberately distinct from a run that exited non-zero
	ErrNotFound = errors.New("package manager executable not found")

	// ErrEmptyCommand is returned for a blank executable string
	ErrEmptyCommand = errors.New("empty package manager command")
)

// Result captures one package manager invocation.
type Result struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Invoker runs one package manager command synchronously. A non-zero
// exit is reported through Result.ExitCode, not through the error; the
// error is reserved for failures to spawn at all.
type Invoker interface {
	Invoke(ctx context.Context, name string, argsTemplate []string, packages []string) (Result, error)
}

// ExpandArgs substitutes the placeholder into an argument template.
// Every template element equal to Placeholder is replaced by the
// package list; a template without the placeholder gets the packages
// appended after its last argument.
func ExpandArgs(template, packages []string) []string {
	args := make([]string, 0, len(template)+len(packages))
	expanded := false

	for _, arg := range template {
		if arg == Placeholder {
			args = append(args, packages...)
			expanded = true
			continue
		}
		args = append(args, arg)
	}

	if !expanded {
		args = append(args, packages...)
	}
	return args
}

// ExecInvoker is the real Invoker backed by os/exec. Stdin and Tee are
// optional: Stdin lets the spawned manager prompt (sudo passwords),
// Tee mirrors the captured output to the terminal as it is produced.
type ExecInvoker struct {
	Logger hclog.Logger
	Stdin  io.Reader
	Tee    io.Writer
}

// Invoke spawns the package manager and blocks until it exits. The name
// is split shell-style, so "sudo apt-get" works as an executable.
func (e *ExecInvoker) Invoke(ctx context.Context, name string, argsTemplate []string, packages []string) (Result, error) {
	words, err := shellparse.Split(name)
	if err != nil {
		return Result{}, fmt.Errorf("parsing package manager command %q: %w", name, err)
	}
	if len(words) == 0 {
		return Result{}, ErrEmptyCommand
	}

	args := append(words[1:], ExpandArgs(argsTemplate, packages)...)
	res := Result{Command: append([]string{words[0]}, args...)}

	if e.Logger != nil {
		e.Logger.Info("invoking package manager", "command", shellparse.Join(res.Command))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, words[0], args...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if e.Tee != nil {
		cmd.Stdout = io.MultiWriter(e.Tee, &stdout)
		cmd.Stderr = io.MultiWriter(e.Tee, &stderr)
	}

	err = cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case errors.Is(err, exec.ErrNotFound):
		return res, fmt.Errorf("%w: %q", ErrNotFound, words[0])
	default:
		return res, fmt.Errorf("running %q: %w", words[0], err)
	}

	if e.Logger != nil {
		e.Logger.Debug("package manager finished", "exit_code", res.ExitCode)
	}
	return res, nil
}
