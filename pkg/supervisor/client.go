package supervisor

import (
	"context"
	"strings"
	"time"

	"github.com/marmos91/kioskd/internal/execx"
	"github.com/marmos91/kioskd/internal/logger"
)

// StateRunning is the supervisor state string meaning a service is up.
// Other states (STOPPED, STARTING, FATAL, ...) pass through unparsed.
const StateRunning = "RUNNING"

// StateUnknown is reported for a managed service that is absent from the
// status snapshot.
const StateUnknown = "UNKNOWN"

// Config holds the external supervisor invocation parameters.
type Config struct {
	// Command is the supervisorctl executable name or path.
	Command string

	// StatusTimeout bounds one status query.
	StatusTimeout time.Duration

	// ControlTimeout bounds one start or stop call.
	ControlTimeout time.Duration
}

// Client queries and mutates external service state through supervisorctl.
//
// All calls are bounded by the configured timeouts and never return Go
// errors: a failed status query yields an empty snapshot and failed
// start/stop calls surface as "stack still not running" on the next
// snapshot.
type Client struct {
	cfg      Config
	registry Registry
	runner   execx.Runner
}

// NewClient builds a Client. A nil runner uses the host runner.
func NewClient(cfg Config, registry Registry, runner execx.Runner) *Client {
	if runner == nil {
		runner = execx.OSRunner{}
	}
	return &Client{cfg: cfg, registry: registry, runner: runner}
}

// Registry returns the service registry the client manages.
func (c *Client) Registry() Registry { return c.registry }

// StatusSnapshot runs "supervisorctl status" and parses one "name state"
// pair per line. On non-zero exit, timeout, or unparseable output it
// returns an empty map; callers treat that as "status channel unavailable"
// rather than "everything is down" (see StackRunning).
func (c *Client) StatusSnapshot(ctx context.Context) map[string]string {
	res := c.runner.Run(ctx, c.cfg.StatusTimeout, c.cfg.Command, "status")
	if !res.OK() {
		logger.Debug("supervisor status query failed",
			"command", c.cfg.Command, "exit_code", res.Code)
		return map[string]string{}
	}

	snapshot := map[string]string{}
	for _, line := range strings.Split(res.Stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			snapshot[fields[0]] = fields[1]
		}
	}
	return snapshot
}

// ServiceRunning reports whether a single service is RUNNING in snapshot.
func ServiceRunning(snapshot map[string]string, name string) bool {
	return snapshot[name] == StateRunning
}

// StackRunning reports whether every managed service is RUNNING.
//
// Policy decision: an empty snapshot reports true. When supervisorctl
// itself is failing we must not claim the stack is down, or a flaky status
// channel would trigger needless restarts of a healthy desktop.
func (c *Client) StackRunning(snapshot map[string]string) bool {
	if len(snapshot) == 0 {
		return true
	}
	for _, name := range c.registry.StartOrder() {
		if !ServiceRunning(snapshot, name) {
			return false
		}
	}
	return true
}

// Start issues a fire-and-forget start of one service.
func (c *Client) Start(ctx context.Context, name string) {
	res := c.runner.Run(ctx, c.cfg.ControlTimeout, c.cfg.Command, "start", name)
	if !res.OK() {
		logger.Warn("supervisor start failed", "service", name, "exit_code", res.Code, "output", res.Output())
	}
}

// Stop issues a fire-and-forget stop of one service.
func (c *Client) Stop(ctx context.Context, name string) {
	res := c.runner.Run(ctx, c.cfg.ControlTimeout, c.cfg.Command, "stop", name)
	if !res.OK() {
		logger.Warn("supervisor stop failed", "service", name, "exit_code", res.Code, "output", res.Output())
	}
}

// StartStack starts all managed services in start order.
func (c *Client) StartStack(ctx context.Context) {
	for _, name := range c.registry.StartOrder() {
		c.Start(ctx, name)
	}
}

// StopStack stops all managed services in stop order.
func (c *Client) StopStack(ctx context.Context) {
	for _, name := range c.registry.StopOrder() {
		c.Stop(ctx, name)
	}
}
