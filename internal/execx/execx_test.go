package execx

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestRun_Success(t *testing.T) {
	res := OSRunner{}.Run(context.Background(), 5*time.Second, "/bin/sh", "-c", "echo hello")

	if !res.OK() {
		t.Fatalf("expected success, got code %d stderr %q", res.Code, res.Stderr)
	}
	if res.Output() != "hello" {
		t.Errorf("expected output hello, got %q", res.Output())
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	res := OSRunner{}.Run(context.Background(), 5*time.Second, "/bin/sh", "-c", "echo oops >&2; exit 3")

	if res.Code != 3 {
		t.Errorf("expected code 3, got %d", res.Code)
	}
	if res.Output() != "oops" {
		t.Errorf("expected stderr fallback, got %q", res.Output())
	}
}

func TestRun_MissingBinary(t *testing.T) {
	res := OSRunner{}.Run(context.Background(), 5*time.Second, "definitely-not-a-real-binary")

	if res.Code != ExitMissing {
		t.Errorf("expected code %d, got %d", ExitMissing, res.Code)
	}
}

func TestRun_Timeout(t *testing.T) {
	start := time.Now()
	res := OSRunner{}.Run(context.Background(), 100*time.Millisecond, "/bin/sh", "-c", "sleep 5")

	if res.OK() {
		t.Error("expected failure on timeout")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not enforced, took %s", elapsed)
	}
}

func TestRun_TimeoutWithForkedChild(t *testing.T) {
	// The background child inherits the output pipes and outlives the
	// killed shell; the wait grace must unblock Run anyway.
	start := time.Now()
	res := OSRunner{}.Run(context.Background(), 100*time.Millisecond, "/bin/sh", "-c", "sleep 5 & sleep 5")

	if res.OK() {
		t.Error("expected failure on timeout")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("forked child held Run past the wait grace, took %s", elapsed)
	}
}

func TestRunShell(t *testing.T) {
	res := OSRunner{}.RunShell(context.Background(), 5*time.Second, "printf a; printf b")

	if !res.OK() {
		t.Fatalf("expected success, got code %d", res.Code)
	}
	if res.Stdout != "ab" {
		t.Errorf("expected ab, got %q", res.Stdout)
	}
}

func TestRun_DisplayDefaulted(t *testing.T) {
	if old, had := os.LookupEnv("DISPLAY"); had {
		os.Unsetenv("DISPLAY")
		t.Cleanup(func() { os.Setenv("DISPLAY", old) })
	}

	res := OSRunner{}.RunShell(context.Background(), 5*time.Second, "echo $DISPLAY")

	if !res.OK() {
		t.Fatalf("expected success, got code %d", res.Code)
	}
	if res.Output() != ":0" {
		t.Errorf("expected DISPLAY defaulted to :0, got %q", res.Output())
	}
}

func TestOutput_PrefersStdout(t *testing.T) {
	r := Result{Stdout: "  out  ", Stderr: "err"}
	if r.Output() != "out" {
		t.Errorf("expected trimmed stdout, got %q", r.Output())
	}

	r = Result{Stderr: " err \n"}
	if r.Output() != "err" {
		t.Errorf("expected trimmed stderr, got %q", r.Output())
	}
}
