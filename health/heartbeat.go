package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/bbshealth/heartbeat"
	"github.com/jonwraymond/bbshealth/observe"
)

// HeartbeatCheckerConfig configures the heartbeat checker.
type HeartbeatCheckerConfig struct {
	Resolver *heartbeat.Resolver

	// PID supplies the live server PID for candidate disambiguation.
	// Nil or a non-positive result disables PID matching.
	PID func() int

	// Default: heartbeat.DefaultLimits()
	Limits heartbeat.Limits

	Logger observe.Logger

	// Default: time.Now
	Now func() time.Time
}

// HeartbeatChecker resolves, decodes and judges the server heartbeat file.
type HeartbeatChecker struct {
	config HeartbeatCheckerConfig
}

// NewHeartbeatChecker creates a heartbeat checker.
func NewHeartbeatChecker(config HeartbeatCheckerConfig) *HeartbeatChecker {
	if config.PID == nil {
		config.PID = func() int { return 0 }
	}
	defaults := heartbeat.DefaultLimits()
	if config.Limits.MaxAge <= 0 {
		config.Limits.MaxAge = defaults.MaxAge
	}
	if config.Limits.RxTimeout <= 0 {
		config.Limits.RxTimeout = defaults.RxTimeout
	}
	if config.Logger == nil {
		config.Logger = observe.NewNopLogger()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &HeartbeatChecker{config: config}
}

// Name returns the name of this checker.
func (h *HeartbeatChecker) Name() string {
	return "heartbeat"
}

// Check performs the heartbeat check.
func (h *HeartbeatChecker) Check(ctx context.Context) Result {
	pid := h.config.PID()

	candidate, err := h.config.Resolver.Resolve(ctx, pid)
	if err != nil {
		return Unhealthy(fmt.Sprintf("heartbeat file not found: %v", err), err)
	}

	rec, err := heartbeat.Load(candidate.Path)
	if err != nil {
		return Unhealthy(fmt.Sprintf("heartbeat file unreadable: %v", err), err).
			WithDetails(map[string]any{"path": candidate.Path})
	}

	now := h.config.Now()
	a := heartbeat.Evaluate(rec, now, h.config.Limits)
	if a.Skew.Any() {
		h.config.Logger.Warn(ctx, "heartbeat timestamp is in the future",
			observe.F("path", candidate.Path),
			observe.F("timestamp_skew", a.Skew.Timestamp),
			observe.F("last_rx_skew", a.Skew.LastRx),
		)
	}

	details := map[string]any{
		"path":         candidate.Path,
		"pid_match":    candidate.PIDMatch,
		"kind":         rec.Kind.String(),
		"status":       rec.Status,
		"reader_alive": rec.ReaderAlive,
		"age":          heartbeat.FormatAge(a.Age),
		"rx_age":       heartbeat.FormatAge(a.RxAge),
	}

	if !a.Healthy {
		return Unhealthy(a.Reason, fmt.Errorf("%w: %s", ErrStaleHeartbeat, a.Failed)).
			WithDetails(details)
	}
	return Healthy(a.Reason).WithDetails(details)
}
