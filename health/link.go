package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/bbshealth/config"
	"github.com/jonwraymond/bbshealth/linkprobe"
	"github.com/jonwraymond/bbshealth/observe"
)

// LinkCheckerConfig configures the radio link checker.
type LinkCheckerConfig struct {
	// Radio supplies the loaded radio settings. A false second result skips
	// the probe.
	Radio func() (config.Radio, bool)

	// Probe holds timeouts and attempt bounds; host and port come from Radio.
	Probe linkprobe.Config

	Logger observe.Logger
}

// LinkChecker runs the stream handshake against a TCP radio. Failures are
// reported as degraded; the stage is meant to be registered soft.
type LinkChecker struct {
	config LinkCheckerConfig
}

// NewLinkChecker creates a radio link checker.
func NewLinkChecker(cfg LinkCheckerConfig) *LinkChecker {
	if cfg.Radio == nil {
		cfg.Radio = func() (config.Radio, bool) { return config.Radio{}, false }
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NewNopLogger()
	}
	return &LinkChecker{config: cfg}
}

// Name returns the name of this checker.
func (l *LinkChecker) Name() string {
	return "link"
}

// Check performs the link check.
func (l *LinkChecker) Check(ctx context.Context) Result {
	radio, ok := l.config.Radio()
	if !ok {
		return Skipped("radio settings unavailable; probe skipped")
	}
	if !radio.IsTCP() {
		return Skipped(fmt.Sprintf("interface type %q is not tcp; probe skipped", radio.InterfaceType))
	}

	cfg := l.config.Probe
	cfg.Host = radio.Hostname
	cfg.Port = radio.Port
	prober := linkprobe.NewProber(cfg, l.config.Logger)

	res := prober.Probe(ctx)
	details := map[string]any{
		"address":  prober.Config().Address(),
		"attempts": res.Attempts,
	}
	if !res.Success {
		r := Degraded(fmt.Sprintf("radio unreachable at %s: %s", prober.Config().Address(), res.Detail))
		r.Error = fmt.Errorf("%w: %s", ErrLinkUnreachable, res.Detail)
		return r.WithDetails(details)
	}
	return Healthy(fmt.Sprintf("radio reachable at %s: %s", prober.Config().Address(), res.Detail)).
		WithDetails(details)
}
