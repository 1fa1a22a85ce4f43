package supervisor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/marmos91/kioskd/internal/execx"
)

// fakeRunner records invocations and replays canned results keyed by the
// joined command line.
type fakeRunner struct {
	results map[string]execx.Result
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, _ time.Duration, name string, args ...string) execx.Result {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, cmdline)
	if res, ok := f.results[cmdline]; ok {
		return res
	}
	return execx.Result{Code: 0}
}

func (f *fakeRunner) RunShell(ctx context.Context, timeout time.Duration, script string) execx.Result {
	return f.Run(ctx, timeout, "/bin/sh", "-lc", script)
}

func newTestClient(runner execx.Runner, companion string) *Client {
	return NewClient(Config{
		Command:        "supervisorctl",
		StatusTimeout:  time.Second,
		ControlTimeout: time.Second,
	}, NewRegistry("xfce", companion), runner)
}

func TestStatusSnapshot_ParsesNameStatePairs(t *testing.T) {
	runner := &fakeRunner{results: map[string]execx.Result{
		"supervisorctl status": {
			Code: 0,
			Stdout: "xfce       RUNNING   pid 211, uptime 1:02:33\n" +
				"desktop    STOPPED   Not started\n" +
				"\n" +
				"malformed\n",
		},
	}}
	client := newTestClient(runner, "desktop")

	snapshot := client.StatusSnapshot(context.Background())

	if got := snapshot["xfce"]; got != "RUNNING" {
		t.Errorf("xfce state = %q, want RUNNING", got)
	}
	if got := snapshot["desktop"]; got != "STOPPED" {
		t.Errorf("desktop state = %q, want STOPPED", got)
	}
	if _, ok := snapshot["malformed"]; ok {
		t.Error("single-field line should be skipped")
	}
}

func TestStatusSnapshot_FailureYieldsEmptyMap(t *testing.T) {
	runner := &fakeRunner{results: map[string]execx.Result{
		"supervisorctl status": {Code: 2, Stderr: "refused"},
	}}
	client := newTestClient(runner, "")

	if snapshot := client.StatusSnapshot(context.Background()); len(snapshot) != 0 {
		t.Errorf("expected empty snapshot on failure, got %v", snapshot)
	}
}

func TestStackRunning_EmptySnapshotFailsOpen(t *testing.T) {
	client := newTestClient(&fakeRunner{}, "desktop")

	// Status channel unavailable: do not claim the stack is down.
	if !client.StackRunning(map[string]string{}) {
		t.Error("empty snapshot should report running (fail-open)")
	}
}

func TestStackRunning_RequiresAllServices(t *testing.T) {
	client := newTestClient(&fakeRunner{}, "desktop")

	running := map[string]string{"xfce": "RUNNING", "desktop": "RUNNING"}
	if !client.StackRunning(running) {
		t.Error("all RUNNING should report running")
	}

	partial := map[string]string{"xfce": "RUNNING", "desktop": "FATAL"}
	if client.StackRunning(partial) {
		t.Error("FATAL companion should report not running")
	}

	missing := map[string]string{"xfce": "RUNNING", "other": "RUNNING"}
	if client.StackRunning(missing) {
		t.Error("companion absent from snapshot should report not running")
	}
}

func TestStartStack_StartsInOrder(t *testing.T) {
	runner := &fakeRunner{}
	client := newTestClient(runner, "desktop")

	client.StartStack(context.Background())

	want := []string{"supervisorctl start xfce", "supervisorctl start desktop"}
	if len(runner.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", runner.calls, want)
	}
	for i := range want {
		if runner.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, runner.calls[i], want[i])
		}
	}
}

func TestStopStack_StopsInReverseOrder(t *testing.T) {
	runner := &fakeRunner{}
	client := newTestClient(runner, "desktop")

	client.StopStack(context.Background())

	want := []string{"supervisorctl stop desktop", "supervisorctl stop xfce"}
	for i := range want {
		if runner.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, runner.calls[i], want[i])
		}
	}
}
