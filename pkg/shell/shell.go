// Package shell runs external commands for builders, echoing each
// command before it runs and attributing failures correctly: a missing
// tool or a non-zero exit is the user's problem to fix, not an internal
// bug.
package shell

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/weldbuild/weld/pkg/errors"
)

// Runner runs external commands in a fixed directory and environment.
// The zero value runs in the current directory with the inherited
// environment and the default logger.
type Runner struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env is the environment. Nil means inherit.
	Env []string

	// Logger echoes commands before they run. Nil means log.Default.
	Logger *log.Logger

	// Stdout and Stderr receive the command's output. Nil means the
	// process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Log returns the runner's logger, falling back to the default.
func (r *Runner) Log() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

func (r *Runner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Env = r.Env
	return cmd
}

func classify(name string, args []string, err error) error {
	if err == nil {
		return nil
	}
	line := Line(name, args...)
	var exit *exec.ExitError
	switch {
	case stderrors.As(err, &exit):
		return errors.Wrap(errors.ErrCodeCommandFailed, err,
			"command failed (exit %d): %s", exit.ExitCode(), line)
	case stderrors.Is(err, exec.ErrNotFound):
		return errors.Wrap(errors.ErrCodeToolMissing, err, "%s is not installed", name)
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "running %s", line)
	}
}

// Line renders a command the way it is echoed.
func Line(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

// Run echoes and runs a command, streaming its output. A non-zero exit
// is returned as a user error carrying the exit status; it is never
// swallowed.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	r.Log().Info("> " + Line(name, args...))
	cmd := r.command(ctx, name, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return classify(name, args, cmd.Run())
}

// RunAllowFailure is Run, except that a non-zero exit is logged as a
// warning and reported back as (false, nil) instead of an error. Other
// failures (missing tool, cancelled context) still error.
func (r *Runner) RunAllowFailure(ctx context.Context, name string, args ...string) (bool, error) {
	err := r.Run(ctx, name, args...)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errors.ErrCodeCommandFailed) {
		r.Log().Warn("command failed, continuing", "cmd", Line(name, args...))
		return false, nil
	}
	return false, err
}

// Output echoes and runs a command, returning its trimmed standard
// output. Standard error is passed through.
func (r *Runner) Output(ctx context.Context, name string, args ...string) (string, error) {
	r.Log().Info("> " + Line(name, args...))
	cmd := r.command(ctx, name, args...)
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	out, err := cmd.Output()
	if err != nil {
		return "", classify(name, args, err)
	}
	return strings.TrimSpace(string(out)), nil
}
