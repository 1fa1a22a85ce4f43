// Package execx runs external commands with bounded timeouts and captures
// their exit status and output without ever returning a Go error: every
// failure mode (missing binary, non-zero exit, timeout, kill) is folded
// into the Result so callers can treat command outcomes as data.
//
// All kioskd collaborators (supervisorctl, the kiosk-mode script, the X
// readiness probes) are driven through this package.
package execx

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ExitMissing is the conventional exit code reported when the command's
// binary does not exist or is not executable, mirroring shell behavior.
const ExitMissing = 127

// waitGrace bounds how long Run keeps waiting for output pipes after the
// deadline kill. Shell scripts routinely fork children that inherit
// stdout/stderr and outlive the killed parent; without this bound Wait
// blocks until the last descendant exits.
const waitGrace = time.Second

// Result is the outcome of one external command invocation.
type Result struct {
	Code   int    // process exit code; ExitMissing if the binary was absent
	Stdout string // captured standard output
	Stderr string // captured standard error
}

// OK reports whether the command exited zero.
func (r Result) OK() bool { return r.Code == 0 }

// Output returns trimmed stdout if non-empty, else trimmed stderr.
func (r Result) Output() string {
	if s := strings.TrimSpace(r.Stdout); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stderr)
}

// Runner executes external commands. The production implementation is
// OSRunner; tests substitute fakes.
type Runner interface {
	// Run executes name with args, bounded by timeout.
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) Result

	// RunShell executes script through "/bin/sh -lc", bounded by timeout.
	RunShell(ctx context.Context, timeout time.Duration, script string) Result
}

// OSRunner runs commands on the host. Commands inherit the process
// environment with DISPLAY defaulted to ":0" when unset, since every
// collaborator here talks to the X session.
type OSRunner struct{}

var _ Runner = OSRunner{}

// Run implements Runner.
func (OSRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = displayEnv()
	cmd.WaitDelay = waitGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return Result{
		Code:   exitCode(cmd, err),
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
}

// RunShell implements Runner.
func (r OSRunner) RunShell(ctx context.Context, timeout time.Duration, script string) Result {
	return r.Run(ctx, timeout, "/bin/sh", "-lc", script)
}

func exitCode(cmd *exec.Cmd, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return ExitMissing
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	// Timeout kill, permission error, or similar: the process state may
	// be unavailable, report a generic failure.
	if cmd.ProcessState != nil {
		if code := cmd.ProcessState.ExitCode(); code >= 0 {
			return code
		}
	}
	return -1
}

func displayEnv() []string {
	env := os.Environ()
	for _, kv := range env {
		if strings.HasPrefix(kv, "DISPLAY=") {
			return env
		}
	}
	return append(env, "DISPLAY=:0")
}
