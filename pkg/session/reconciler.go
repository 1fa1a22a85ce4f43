package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/kioskd/internal/logger"
	"github.com/marmos91/kioskd/pkg/metrics"
	"github.com/marmos91/kioskd/pkg/supervisor"
)

// Supervisor is the slice of the supervisor client the reconciler drives.
// *supervisor.Client satisfies it; tests substitute fakes.
type Supervisor interface {
	Registry() supervisor.Registry
	StatusSnapshot(ctx context.Context) map[string]string
	StackRunning(snapshot map[string]string) bool
	StartStack(ctx context.Context)
	StopStack(ctx context.Context)
}

// readinessProber is the prober surface the reconciler needs.
type readinessProber interface {
	WaitStackReady(ctx context.Context) bool
	WaitDisplayReady(ctx context.Context) bool
}

// ReconcilerConfig holds reconciliation tunables.
type ReconcilerConfig struct {
	// SettleDelay is the pause after a successful mode apply, letting the
	// desktop finish rendering before status is reported.
	SettleDelay time.Duration
}

// Reconciler owns the mode-reconciliation state machine. Current-mode
// memory and the single-flight switch lock live here; both are mutated
// only inside EnsureMode's locked section. Status reads are advisory and
// never contend with an in-flight reconciliation.
type Reconciler struct {
	cfg        ReconcilerConfig
	sup        Supervisor
	prober     readinessProber
	applicator Applicator
	metrics    metrics.SessionMetrics

	// switchMu is the single-flight lock: at most one reconciliation runs
	// at a time, concurrent attempts fail fast via TryLock.
	switchMu sync.Mutex

	// stateMu guards the mode-state fields below for lock-free-ish status
	// reads. Mutation happens only while switchMu is also held, except
	// InvalidateMode, which bumps modeGen so a concurrent apply cannot
	// overwrite the invalidation.
	stateMu     sync.Mutex
	currentMode Mode
	modeGen     uint64
	lastApply   time.Time
	lastSwitch  time.Time
}

// NewReconciler wires the reconciliation core. metrics may be nil to
// disable collection.
func NewReconciler(cfg ReconcilerConfig, sup Supervisor, prober readinessProber, applicator Applicator, m metrics.SessionMetrics) *Reconciler {
	if m == nil {
		m = metrics.Nop{}
	}
	return &Reconciler{
		cfg:         cfg,
		sup:         sup,
		prober:      prober,
		applicator:  applicator,
		metrics:     m,
		currentMode: ModeUnknown,
	}
}

// CurrentMode returns the last successfully applied mode, or ModeUnknown.
func (r *Reconciler) CurrentMode() Mode {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.currentMode
}

// InvalidateMode resets the cached mode to unknown so the next request
// re-applies regardless of the flicker-suppression rule. Used when the
// toggle script changes on disk.
func (r *Reconciler) InvalidateMode(reason string) {
	r.stateMu.Lock()
	prev := r.currentMode
	r.currentMode = ModeUnknown
	r.modeGen++
	r.stateMu.Unlock()

	if prev != ModeUnknown {
		logger.Info("cached mode invalidated", "previous_mode", prev, "reason", reason)
	}
}

// Status returns the advisory state snapshot. It takes a fresh supervisor
// snapshot but not the switch lock, so it may observe an in-flight
// reconciliation's intermediate state.
func (r *Reconciler) Status(ctx context.Context) Status {
	snapshot := r.sup.StatusSnapshot(ctx)
	return r.buildStatus(snapshot)
}

func (r *Reconciler) buildStatus(snapshot map[string]string) Status {
	reg := r.sup.Registry()

	services := map[string]string{
		reg.WMService(): serviceState(snapshot, reg.WMService()),
	}
	if reg.CompanionEnabled() {
		services[reg.CompanionService()] = serviceState(snapshot, reg.CompanionService())
	}

	r.stateMu.Lock()
	mode, lastApply, lastSwitch := r.currentMode, r.lastApply, r.lastSwitch
	r.stateMu.Unlock()

	return Status{
		Services:       services,
		Running:        r.sup.StackRunning(snapshot),
		LastSwitchTS:   unixSeconds(lastSwitch),
		KioskScript:    r.applicator.ScriptPath(),
		WMService:      reg.WMService(),
		DesktopService: reg.CompanionService(),
		CurrentMode:    mode,
		LastApplyTS:    unixSeconds(lastApply),
	}
}

func serviceState(snapshot map[string]string, name string) string {
	if state, ok := snapshot[name]; ok {
		return state
	}
	return supervisor.StateUnknown
}

// EnsureMode converges the desktop session on the desired kiosk mode and
// returns an HTTP status hint (200 ready, 202 still converging) plus the
// result record.
//
// The step sequence runs entirely under the switch lock:
//
//  1. Non-blocking lock acquire; if held, return busy with no mutation.
//  2. Snapshot stack state.
//  3. Restart (forced) or start (stack down) the service stack, then wait
//     for stack readiness and, best-effort, display readiness.
//  4. Apply the mode toggle only when forced, restarted, or the cached
//     mode differs from the desired one; a stack already running in the
//     target mode is left untouched (flicker suppression).
//  5. Re-snapshot and fold every soft failure into the final ok.
//
// Every external call is timeout-bounded; failures degrade the result,
// they never abort the run or leave the lock held.
func (r *Reconciler) EnsureMode(ctx context.Context, force, wantKiosk bool) (int, Result) {
	start := time.Now()
	desired := DesiredMode(wantKiosk)

	if !r.switchMu.TryLock() {
		r.metrics.RecordBusy()
		res := Result{
			Status:        r.Status(ctx),
			OK:            false,
			Busy:          true,
			Changed:       false,
			RequestedMode: desired,
			ModeOK:        true,
			Message:       MsgSwitchInProgress,
		}
		return http.StatusAccepted, res
	}
	defer r.switchMu.Unlock()

	logger.Debug("reconcile started", "requested_mode", desired, "force", force)

	snapshot := r.sup.StatusSnapshot(ctx)
	running := r.sup.StackRunning(snapshot)

	restarted := false
	if force || !running {
		stackOK := r.cycleStack(ctx, force)
		restarted = true
		r.stateMu.Lock()
		r.lastSwitch = time.Now()
		r.stateMu.Unlock()

		// Supervisor saying RUNNING does not mean X accepts connections
		// yet; give the display a chance to come up, but keep going on
		// timeout (best-effort).
		if stackOK {
			r.prober.WaitDisplayReady(ctx)
		}
	}

	// Flicker-suppression rule: skip the toggle whenever the stack was
	// already running in the target mode and neither force nor a restart
	// occurred. Repeated polling of /kiosk or /show must not re-apply.
	r.stateMu.Lock()
	cur, gen := r.currentMode, r.modeGen
	r.stateMu.Unlock()
	applyNeeded := force || restarted || cur != desired

	modeOK := true
	modeMsg := "skipped"
	if applyNeeded {
		modeOK, modeMsg = r.applicator.Apply(ctx, desired)
		r.metrics.RecordModeApply(string(desired), modeOK)
		if modeOK {
			r.stateMu.Lock()
			// An invalidation that landed while the script was running
			// must not be overwritten: the script that just ran may no
			// longer be the one on disk.
			if r.modeGen == gen {
				r.currentMode = desired
			}
			r.lastApply = time.Now()
			r.stateMu.Unlock()
			if r.cfg.SettleDelay > 0 {
				time.Sleep(r.cfg.SettleDelay)
			}
		} else {
			logger.Warn("mode apply failed", "requested_mode", desired, "message", modeMsg)
		}
	}

	status := r.Status(ctx)
	ok := status.Running && modeOK && status.CurrentMode == desired

	res := Result{
		Status:        status,
		OK:            ok,
		Busy:          false,
		Changed:       restarted,
		RequestedMode: desired,
		Applied:       applyNeeded,
		ModeOK:        modeOK,
		ModeMsg:       modeMsg,
		Message:       resultMessage(ok, status.Running),
	}

	code := http.StatusOK
	if !ok {
		code = http.StatusAccepted
	}

	r.metrics.RecordReconcile(res.Message, force, time.Since(start))
	logger.Info("reconcile finished",
		"requested_mode", desired,
		"force", force,
		"ok", ok,
		"changed", restarted,
		"applied", applyNeeded,
		"message", res.Message,
		"duration_ms", logger.Duration(start))

	return code, res
}

// resultMessage distinguishes "starting" (stack not up yet) from
// "applying" (stack up, mode not converged) in degraded results.
func resultMessage(ok, running bool) string {
	switch {
	case ok:
		return MsgReady
	case !running:
		return MsgStarting
	default:
		return MsgApplying
	}
}

// cycleStack stops (only on restart) and starts the managed services,
// then waits for the stack to report running. Returns whether the stack
// came up within the bounded wait.
func (r *Reconciler) cycleStack(ctx context.Context, restart bool) bool {
	kind := "start"
	if restart {
		kind = "restart"
		r.sup.StopStack(ctx)
	}
	r.sup.StartStack(ctx)
	r.metrics.RecordStackAction(kind)
	return r.prober.WaitStackReady(ctx)
}

// RestartStack performs an unconditional stop-then-start of all managed
// services and returns a fresh status snapshot. Unlike EnsureMode it does
// not contend for the switch lock and never touches mode state: a manual
// restart is not a mode switch, so the switch timestamp stays put.
func (r *Reconciler) RestartStack(ctx context.Context) Status {
	r.sup.StopStack(ctx)
	r.sup.StartStack(ctx)
	r.metrics.RecordStackAction("manual")

	r.prober.WaitStackReady(ctx)
	logger.Info("stack restarted", "services", r.sup.Registry().StartOrder())
	return r.Status(ctx)
}
