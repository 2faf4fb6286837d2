package procscan

import (
	"context"
	"os"
	"strings"

	"github.com/jonwraymond/bbshealth/observe"
)

// DefaultMarker is the command-line fragment identifying the BBS server.
const DefaultMarker = "server.py"

// ProbeResult reports whether the server process was found.
type ProbeResult struct {
	Found       bool
	PID         int
	CommandLine string
	Signal      Signal
	Scanned     int
}

// Prober scans a Table for the monitored process.
type Prober struct {
	table   Table
	marker  string
	selfPID int
	logger  observe.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithLogger sets the logger used for skipped entries.
func WithLogger(logger observe.Logger) Option {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSelfPID overrides the pid excluded from matching. The probing process
// is always excluded since its own arguments may contain the marker.
func WithSelfPID(pid int) Option {
	return func(p *Prober) { p.selfPID = pid }
}

// NewProber creates a Prober looking for marker in command lines.
func NewProber(table Table, marker string, opts ...Option) *Prober {
	if marker == "" {
		marker = DefaultMarker
	}
	p := &Prober{
		table:   table,
		marker:  marker,
		selfPID: os.Getpid(),
		logger:  observe.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Marker returns the command-line fragment being searched for.
func (p *Prober) Marker() string {
	return p.marker
}

// Probe scans every process once. Unreadable entries and processes that
// exit mid-scan are skipped. The returned error is non-nil only when the
// table itself cannot be listed.
func (p *Prober) Probe(ctx context.Context) (ProbeResult, error) {
	pids, err := p.table.ListProcessIDs(ctx)
	if err != nil {
		return ProbeResult{}, err
	}

	result := ProbeResult{}
	for _, pid := range pids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if pid == p.selfPID {
			continue
		}
		result.Scanned++

		cmdline, err := p.table.ReadCommandLine(ctx, pid)
		if err != nil {
			p.logger.Debug(ctx, "skipping unreadable process entry",
				observe.F("pid", pid), observe.F("error", err.Error()))
			continue
		}
		if !strings.Contains(cmdline, p.marker) {
			continue
		}

		sig, err := p.table.SignalExists(pid)
		if err != nil {
			p.logger.Warn(ctx, "liveness signal failed",
				observe.F("pid", pid), observe.F("error", err.Error()))
			continue
		}

		switch sig {
		case SignalDelivered, SignalPermissionDenied:
			result.Found = true
			result.PID = pid
			result.CommandLine = cmdline
			result.Signal = sig
			return result, nil
		case SignalNotFound:
			p.logger.Info(ctx, "process exited during scan",
				observe.F("pid", pid), observe.F("cmdline", cmdline))
		}
	}

	return result, nil
}
