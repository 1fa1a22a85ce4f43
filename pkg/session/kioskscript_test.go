package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/kioskd/internal/execx"
)

func writeScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kiosk_mode.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestApply_MissingScriptFailsWithoutSpawning(t *testing.T) {
	runner := &fakeRunner{}
	missing := filepath.Join(t.TempDir(), "nope.sh")
	a := NewScriptApplicator(missing, time.Second, runner)

	ok, msg := a.Apply(context.Background(), ModeOn)

	if ok {
		t.Error("expected failure for missing script")
	}
	if want := "missing_script:" + missing; msg != want {
		t.Errorf("msg = %q, want %q", msg, want)
	}
	if len(runner.calls) != 0 {
		t.Errorf("no process should be spawned, got calls %v", runner.calls)
	}
}

func TestApply_SuccessUsesStdoutMessage(t *testing.T) {
	script := writeScript(t)
	runner := &fakeRunner{results: map[string]execx.Result{
		script + " on": {Code: 0, Stdout: "panels hidden\n", Stderr: "noise"},
	}}
	a := NewScriptApplicator(script, time.Second, runner)

	ok, msg := a.Apply(context.Background(), ModeOn)

	if !ok {
		t.Error("expected success on exit 0")
	}
	if msg != "panels hidden" {
		t.Errorf("msg = %q, want stdout", msg)
	}
}

func TestApply_FallsBackToStderrThenOK(t *testing.T) {
	script := writeScript(t)
	runner := &fakeRunner{results: map[string]execx.Result{
		script + " off": {Code: 1, Stderr: "xfconf-query failed\n"},
	}}
	a := NewScriptApplicator(script, time.Second, runner)

	ok, msg := a.Apply(context.Background(), ModeOff)
	if ok {
		t.Error("expected failure on non-zero exit")
	}
	if msg != "xfconf-query failed" {
		t.Errorf("msg = %q, want stderr", msg)
	}

	runner.results[script+" off"] = execx.Result{Code: 0}
	ok, msg = a.Apply(context.Background(), ModeOff)
	if !ok || msg != "ok" {
		t.Errorf("empty output should yield (true, ok), got (%t, %q)", ok, msg)
	}
}
