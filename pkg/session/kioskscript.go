package session

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/marmos91/kioskd/internal/execx"
)

// Applicator applies a kiosk mode to the running desktop. Implementations
// report soft failure through the (ok, message) pair rather than errors so
// the reconciler can fold outcomes into one final decision.
type Applicator interface {
	// Apply switches the desktop to mode. The message is diagnostic only
	// and never parsed.
	Apply(ctx context.Context, mode Mode) (ok bool, message string)

	// ScriptPath returns the toggle executable path, for status payloads.
	ScriptPath() string
}

// ScriptApplicator invokes an external mode-toggle script with a single
// "on"/"off" argument. Success is exit status zero.
type ScriptApplicator struct {
	script  string
	timeout time.Duration
	runner  execx.Runner
}

// NewScriptApplicator builds a ScriptApplicator. A nil runner uses the
// host runner.
func NewScriptApplicator(script string, timeout time.Duration, runner execx.Runner) *ScriptApplicator {
	if runner == nil {
		runner = execx.OSRunner{}
	}
	return &ScriptApplicator{script: script, timeout: timeout, runner: runner}
}

// ScriptPath implements Applicator.
func (a *ScriptApplicator) ScriptPath() string { return a.script }

// Apply implements Applicator. If the script is absent no process is
// spawned and the call fails immediately with a descriptive message.
func (a *ScriptApplicator) Apply(ctx context.Context, mode Mode) (bool, string) {
	if _, err := os.Stat(a.script); err != nil {
		return false, fmt.Sprintf("missing_script:%s", a.script)
	}

	res := a.runner.Run(ctx, a.timeout, a.script, string(mode))
	msg := res.Output()
	if msg == "" {
		msg = "ok"
	}
	return res.OK(), msg
}
