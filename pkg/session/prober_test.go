package session

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/kioskd/internal/execx"
)

func proberConfig() ProberConfig {
	return ProberConfig{
		StackWaitMax:   50 * time.Millisecond,
		DisplayWaitMax: 50 * time.Millisecond,
		PollInterval:   5 * time.Millisecond,
		ProbeTimeout:   time.Second,
	}
}

func TestWaitStackReady_ImmediateSuccess(t *testing.T) {
	sup := newFakeSupervisor("", true)
	p := NewProber(proberConfig(), sup, &fakeRunner{})

	if !p.WaitStackReady(context.Background()) {
		t.Error("expected ready for running stack")
	}
}

func TestWaitStackReady_TimesOutWhenDown(t *testing.T) {
	sup := newFakeSupervisor("", false)
	p := NewProber(proberConfig(), sup, &fakeRunner{})

	if p.WaitStackReady(context.Background()) {
		t.Error("expected timeout for stopped stack")
	}
}

func TestWaitDisplayReady_FallbackProbes(t *testing.T) {
	sup := newFakeSupervisor("", true)

	// First probe binary missing, second responds.
	runner := &fakeRunner{results: map[string]execx.Result{
		"xset q":   {Code: execx.ExitMissing},
		"xdpyinfo": {Code: 0},
	}}
	p := NewProber(proberConfig(), sup, runner)

	if !p.WaitDisplayReady(context.Background()) {
		t.Error("expected ready from second fallback probe")
	}
	if runner.callCount("xset q") == 0 {
		t.Error("xset should be probed first")
	}
}

func TestWaitDisplayReady_AllProbesFailing(t *testing.T) {
	sup := newFakeSupervisor("", true)
	runner := &fakeRunner{results: map[string]execx.Result{
		"xset q":   {Code: 1},
		"xdpyinfo": {Code: execx.ExitMissing},
	}}
	p := NewProber(proberConfig(), sup, runner)

	if p.WaitDisplayReady(context.Background()) {
		t.Error("expected timeout when no probe succeeds")
	}
}

func TestWaitDisplayReady_CustomCommandReplacesProbes(t *testing.T) {
	sup := newFakeSupervisor("", true)
	cfg := proberConfig()
	cfg.DisplayReadyCommand = "xdotool getactivewindow"

	runner := &fakeRunner{results: map[string]execx.Result{
		"/bin/sh -lc xdotool getactivewindow": {Code: 0},
	}}
	p := NewProber(cfg, sup, runner)

	if !p.WaitDisplayReady(context.Background()) {
		t.Error("expected ready from custom command")
	}
	if runner.callCount("xset q") != 0 || runner.callCount("xdpyinfo") != 0 {
		t.Error("built-in probes must not run when a custom command is set")
	}
}

func TestWaitStackReady_CancelledContextStopsPolling(t *testing.T) {
	sup := newFakeSupervisor("", false)
	cfg := proberConfig()
	cfg.StackWaitMax = 10 * time.Second
	p := NewProber(cfg, sup, &fakeRunner{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if p.WaitStackReady(ctx) {
		t.Error("expected failure with cancelled context")
	}
	if time.Since(start) > time.Second {
		t.Error("cancelled context should stop polling promptly")
	}
}
