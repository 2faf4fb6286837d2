package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/bbshealth/observe"
	"github.com/jonwraymond/bbshealth/procscan"
)

// ProcessCheckerConfig configures the process liveness checker.
type ProcessCheckerConfig struct {
	Prober *procscan.Prober

	// Describe adds informational process details to the log once a PID is
	// found. Nil disables it.
	Describe func(ctx context.Context, pid int) (procscan.Description, error)

	Logger observe.Logger

	// Default: time.Now
	Now func() time.Time
}

// ProcessChecker finds the BBS server process and remembers its PID for
// the heartbeat stage.
type ProcessChecker struct {
	config ProcessCheckerConfig
	pid    int
}

// NewProcessChecker creates a process liveness checker.
func NewProcessChecker(config ProcessCheckerConfig) *ProcessChecker {
	if config.Logger == nil {
		config.Logger = observe.NewNopLogger()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &ProcessChecker{config: config}
}

// Name returns the name of this checker.
func (p *ProcessChecker) Name() string {
	return "process"
}

// PID returns the PID found by the last check, or 0.
func (p *ProcessChecker) PID() int {
	return p.pid
}

// Check performs the process liveness check.
func (p *ProcessChecker) Check(ctx context.Context) Result {
	p.pid = 0
	marker := p.config.Prober.Marker()

	res, err := p.config.Prober.Probe(ctx)
	switch {
	case errors.Is(err, procscan.ErrNoProcessInterface):
		return Unhealthy("no process interface available", err)
	case errors.Is(err, procscan.ErrProcessTableEmpty):
		return Unhealthy("process interface available but empty", err)
	case err != nil:
		return Unhealthy(fmt.Sprintf("process scan failed: %v", err), err)
	}

	if !res.Found {
		return Unhealthy(
			fmt.Sprintf("process not found: no command line contains %q", marker),
			fmt.Errorf("%w: %s", ErrProcessNotFound, marker),
		).WithDetails(map[string]any{"scanned": res.Scanned})
	}

	p.pid = res.PID
	p.describe(ctx, res.PID)

	return Healthy(fmt.Sprintf("%s running as PID %d", marker, res.PID)).
		WithDetails(map[string]any{
			"pid":     res.PID,
			"cmdline": res.CommandLine,
			"signal":  res.Signal.String(),
			"scanned": res.Scanned,
		})
}

func (p *ProcessChecker) describe(ctx context.Context, pid int) {
	if p.config.Describe == nil {
		return
	}

	d, err := p.config.Describe(ctx, pid)
	if err != nil {
		p.config.Logger.Debug(ctx, "process description unavailable",
			observe.F("pid", pid), observe.F("error", err.Error()))
		return
	}

	fields := []observe.Field{
		observe.F("pid", d.PID),
		observe.F("name", d.Name),
		observe.F("status", d.Status),
		observe.F("uptime_s", d.Uptime(p.config.Now()).Seconds()),
	}
	if d.Zombie() {
		p.config.Logger.Warn(ctx, "server process is a zombie", fields...)
		return
	}
	p.config.Logger.Info(ctx, "server process found", fields...)
}
