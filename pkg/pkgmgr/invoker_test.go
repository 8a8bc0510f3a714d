package pkgmgr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandArgs(t *testing.T) {
	tests := []struct {
		name     string
		template []string
		packages []string
		want     []string
	}{
		{
			name:     "placeholder in the middle",
			template: []string{"install", "$PACKAGES", "--yes"},
			packages: []string{"vim", "git"},
			want:     []string{"install", "vim", "git", "--yes"},
		},
		{
			name:     "no placeholder appends packages",
			template: []string{"-S", "--noconfirm"},
			packages: []string{"vim"},
			want:     []string{"-S", "--noconfirm", "vim"},
		},
		{
			name:     "placeholder with empty package list",
			template: []string{"upgrade", "$PACKAGES"},
			packages: nil,
			want:     []string{"upgrade"},
		},
		{
			name:     "placeholder must be its own argument",
			template: []string{"install=$PACKAGES"},
			packages: []string{"vim"},
			want:     []string{"install=$PACKAGES", "vim"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandArgs(tt.template, tt.packages))
		})
	}
}

func TestExecInvokerCapturesOutput(t *testing.T) {
	inv := &ExecInvoker{}

	res, err := inv.Invoke(context.Background(), "echo", []string{"install", "$PACKAGES"}, []string{"vim", "git"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "install vim git\n", res.Stdout)
	assert.Equal(t, []string{"echo", "install", "vim", "git"}, res.Command)
}

func TestExecInvokerQuotedCommandPrefix(t *testing.T) {
	inv := &ExecInvoker{}

	// A multi-word manager name is split shell-style.
	res, err := inv.Invoke(context.Background(), "echo -n", []string{"ok"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Stdout)
}

func TestExecInvokerNonZeroExit(t *testing.T) {
	inv := &ExecInvoker{}

	res, err := inv.Invoke(context.Background(), "sh", []string{"-c", "echo oops >&2; exit 3"}, nil)
	require.NoError(t, err, "a manager that ran and failed is not an invocation error")
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "oops\n", res.Stderr)
}

func TestExecInvokerExecutableNotFound(t *testing.T) {
	inv := &ExecInvoker{}

	_, err := inv.Invoke(context.Background(), "rconf-no-such-manager-xyz", []string{"install"}, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestExecInvokerEmptyCommand(t *testing.T) {
	inv := &ExecInvoker{}

	_, err := inv.Invoke(context.Background(), "   ", nil, nil)
	require.ErrorIs(t, err, ErrEmptyCommand)
}
