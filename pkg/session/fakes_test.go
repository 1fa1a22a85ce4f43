package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/marmos91/kioskd/internal/execx"
	"github.com/marmos91/kioskd/pkg/supervisor"
)

// fakeRunner replays canned results keyed by joined command line and
// records every invocation.
type fakeRunner struct {
	mu      sync.Mutex
	results map[string]execx.Result
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, _ time.Duration, name string, args ...string) execx.Result {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	f.calls = append(f.calls, cmdline)
	res, ok := f.results[cmdline]
	f.mu.Unlock()
	if ok {
		return res
	}
	return execx.Result{Code: 1}
}

func (f *fakeRunner) RunShell(ctx context.Context, timeout time.Duration, script string) execx.Result {
	return f.Run(ctx, timeout, "/bin/sh", "-lc", script)
}

func (f *fakeRunner) callCount(cmdline string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == cmdline {
			n++
		}
	}
	return n
}

// fakeSupervisor is an in-memory Supervisor. Starting a service marks it
// RUNNING, stopping marks it STOPPED.
type fakeSupervisor struct {
	mu       sync.Mutex
	registry supervisor.Registry
	states   map[string]string
	started  []string
	stopped  []string

	// snapshotEmpty simulates a failing status channel.
	snapshotEmpty bool
}

func newFakeSupervisor(companion string, running bool) *fakeSupervisor {
	reg := supervisor.NewRegistry("xfce", companion)
	states := map[string]string{}
	for _, name := range reg.StartOrder() {
		if running {
			states[name] = supervisor.StateRunning
		} else {
			states[name] = "STOPPED"
		}
	}
	return &fakeSupervisor{registry: reg, states: states}
}

func (f *fakeSupervisor) Registry() supervisor.Registry { return f.registry }

func (f *fakeSupervisor) StatusSnapshot(context.Context) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshotEmpty {
		return map[string]string{}
	}
	snapshot := make(map[string]string, len(f.states))
	for k, v := range f.states {
		snapshot[k] = v
	}
	return snapshot
}

func (f *fakeSupervisor) StackRunning(snapshot map[string]string) bool {
	if len(snapshot) == 0 {
		return true
	}
	for _, name := range f.registry.StartOrder() {
		if snapshot[name] != supervisor.StateRunning {
			return false
		}
	}
	return true
}

func (f *fakeSupervisor) StartStack(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, name := range f.registry.StartOrder() {
		f.states[name] = supervisor.StateRunning
		f.started = append(f.started, name)
	}
}

func (f *fakeSupervisor) StopStack(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, name := range f.registry.StopOrder() {
		f.states[name] = "STOPPED"
		f.stopped = append(f.stopped, name)
	}
}

// fakeProber reports fixed readiness without polling.
type fakeProber struct {
	stackReady   bool
	displayReady bool
	stackWaits   int
	displayWaits int
}

func (f *fakeProber) WaitStackReady(context.Context) bool {
	f.stackWaits++
	return f.stackReady
}

func (f *fakeProber) WaitDisplayReady(context.Context) bool {
	f.displayWaits++
	return f.displayReady
}

// fakeApplicator counts applies and returns a configurable outcome.
type fakeApplicator struct {
	mu      sync.Mutex
	ok      bool
	msg     string
	applied []Mode
}

func (f *fakeApplicator) Apply(_ context.Context, mode Mode) (bool, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, mode)
	return f.ok, f.msg
}

func (f *fakeApplicator) ScriptPath() string { return "/fake/kiosk_mode.sh" }

func (f *fakeApplicator) applyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}
