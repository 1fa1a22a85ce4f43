package session

import (
	"context"
	"time"

	"github.com/marmos91/kioskd/internal/execx"
	"github.com/marmos91/kioskd/internal/logger"
)

// displayProbes are the built-in fallback probe commands tried, in order,
// each poll tick when no custom readiness command is configured. A probe
// whose binary is not installed counts as a failed attempt, not an error.
var displayProbes = [][]string{
	{"xset", "q"},
	{"xdpyinfo"},
}

// ProberConfig holds readiness polling parameters.
type ProberConfig struct {
	// StackWaitMax bounds WaitStackReady.
	StackWaitMax time.Duration

	// DisplayWaitMax bounds WaitDisplayReady.
	DisplayWaitMax time.Duration

	// PollInterval is the delay between attempts.
	PollInterval time.Duration

	// ProbeTimeout bounds one display probe invocation.
	ProbeTimeout time.Duration

	// DisplayReadyCommand, when non-empty, replaces the built-in probes;
	// it is run through "/bin/sh -lc" and exit 0 means ready.
	DisplayReadyCommand string
}

// Prober polls, with bounded timeouts, for stack and display readiness.
// Both waits return a plain boolean: a timeout is a degraded outcome the
// reconciler proceeds past, never a fatal error.
type Prober struct {
	cfg    ProberConfig
	sup    Supervisor
	runner execx.Runner
}

// NewProber builds a Prober. A nil runner uses the host runner.
func NewProber(cfg ProberConfig, sup Supervisor, runner execx.Runner) *Prober {
	if runner == nil {
		runner = execx.OSRunner{}
	}
	return &Prober{cfg: cfg, sup: sup, runner: runner}
}

// WaitStackReady polls the supervisor until every managed service reports
// RUNNING, or the bounded wait elapses.
func (p *Prober) WaitStackReady(ctx context.Context) bool {
	return p.poll(ctx, p.cfg.StackWaitMax, func(ctx context.Context) bool {
		snapshot := p.sup.StatusSnapshot(ctx)
		return p.sup.StackRunning(snapshot)
	})
}

// WaitDisplayReady polls until the display subsystem responds, or the
// bounded wait elapses.
func (p *Prober) WaitDisplayReady(ctx context.Context) bool {
	if p.cfg.DisplayReadyCommand != "" {
		return p.poll(ctx, p.cfg.DisplayWaitMax, func(ctx context.Context) bool {
			return p.runner.RunShell(ctx, p.cfg.ProbeTimeout, p.cfg.DisplayReadyCommand).OK()
		})
	}

	return p.poll(ctx, p.cfg.DisplayWaitMax, func(ctx context.Context) bool {
		for _, probe := range displayProbes {
			if p.runner.Run(ctx, p.cfg.ProbeTimeout, probe[0], probe[1:]...).OK() {
				return true
			}
		}
		return false
	})
}

// poll runs attempt every PollInterval until it succeeds or maxWait
// elapses. The first attempt runs immediately.
func (p *Prober) poll(ctx context.Context, maxWait time.Duration, attempt func(context.Context) bool) bool {
	deadline := time.Now().Add(maxWait)
	for {
		if attempt(ctx) {
			return true
		}
		if time.Now().After(deadline) {
			logger.Debug("readiness wait timed out", "max_wait", maxWait)
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(p.cfg.PollInterval):
		}
	}
}
