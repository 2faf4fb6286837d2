package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/bbshealth/observe"
)

// Gate decides whether a failing stage stops the run.
type Gate int

const (
	// GateHard stops the run and fails the verdict when the stage fails.
	GateHard Gate = iota
	// GateSoft records the result without affecting the verdict.
	GateSoft
)

// String returns the string representation of the gate.
func (g Gate) String() string {
	switch g {
	case GateHard:
		return "hard"
	case GateSoft:
		return "soft"
	default:
		return "unknown"
	}
}

// StageResult is the outcome of one stage.
type StageResult struct {
	Name   string
	Gate   Gate
	Result Result
}

// Verdict is the outcome of a full run.
type Verdict struct {
	// Passed is true when every hard stage that ran passed.
	Passed bool

	// FailedStage names the hard stage that stopped the run.
	FailedStage string

	// Reason is the failing stage's message, or a summary on success.
	Reason string

	// Stages holds every stage that ran, in order.
	Stages []StageResult

	Timestamp time.Time
}

// ExitCode maps the verdict to a process exit status.
func (v Verdict) ExitCode() int {
	if v.Passed {
		return 0
	}
	return 1
}

// Err returns nil on success and an ErrCheckFailed wrap otherwise.
func (v Verdict) Err() error {
	if v.Passed {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", ErrCheckFailed, v.FailedStage, v.Reason)
}

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Middleware wraps every stage with a span and a log line.
	// Default: no tracing, no logging
	Middleware *observe.Middleware

	// OnStage is called after each stage completes, before the next starts.
	OnStage func(StageResult)

	// Now is the clock used for verdict timestamps.
	// Default: time.Now
	Now func() time.Time
}

type stage struct {
	name    string
	gate    Gate
	checker Checker
}

// Aggregator runs registered stages strictly in order. The first failing
// hard stage ends the run; soft stages are reported and ignored.
type Aggregator struct {
	config AggregatorConfig
	stages []stage
	names  map[string]struct{}
}

// NewAggregator creates a new health aggregator.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	var cfg AggregatorConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Middleware == nil {
		cfg.Middleware = observe.NewMiddleware(nil, nil)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Aggregator{
		config: cfg,
		names:  make(map[string]struct{}),
	}
}

// Register appends a stage. Stage names must be unique.
func (a *Aggregator) Register(name string, gate Gate, checker Checker) error {
	if _, exists := a.names[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStage, name)
	}
	a.names[name] = struct{}{}
	a.stages = append(a.stages, stage{name: name, gate: gate, checker: checker})
	return nil
}

// StageNames returns the registered stage names in run order.
func (a *Aggregator) StageNames() []string {
	names := make([]string, len(a.stages))
	for i, s := range a.stages {
		names[i] = s.name
	}
	return names
}

// Run executes the stages and returns the verdict. Stages after a failed
// hard stage do not run.
func (a *Aggregator) Run(ctx context.Context) Verdict {
	verdict := Verdict{
		Passed: true,
		Stages: make([]StageResult, 0, len(a.stages)),
	}

	for _, s := range a.stages {
		sr := StageResult{Name: s.name, Gate: s.gate, Result: a.runStage(ctx, s)}
		verdict.Stages = append(verdict.Stages, sr)
		if a.config.OnStage != nil {
			a.config.OnStage(sr)
		}

		if s.gate == GateHard && sr.Result.Failed() {
			verdict.Passed = false
			verdict.FailedStage = s.name
			verdict.Reason = sr.Result.Message
			break
		}
	}

	if verdict.Passed {
		verdict.Reason = "all checks passed"
	}
	verdict.Timestamp = a.config.Now()
	return verdict
}

func (a *Aggregator) runStage(ctx context.Context, s stage) Result {
	start := time.Now()
	var result Result

	meta := observe.StageMeta{Name: s.name, Gate: s.gate.String()}
	_, _ = a.config.Middleware.Wrap(meta, func(ctx context.Context) (string, error) {
		result = s.checker.Check(ctx)
		if !result.Failed() {
			return result.Status.String(), nil
		}
		if result.Error != nil {
			return result.Status.String(), result.Error
		}
		return result.Status.String(), fmt.Errorf("%w: %s", ErrCheckFailed, result.Message)
	})(ctx)

	result.Duration = time.Since(start)
	if result.Timestamp.IsZero() {
		result.Timestamp = start
	}
	return result
}
