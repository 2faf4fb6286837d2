// Package health runs the BBS health check as an ordered series of gated
// stages.
//
// A Checker reports a Result with a Status: Healthy, Degraded, Unhealthy or
// Skipped. The Aggregator runs checkers in registration order. A hard stage
// that fails ends the run and fails the Verdict; a soft stage is reported
// and never changes the outcome.
//
// # Stages
//
// The command registers, in order:
//
//   - config: ConfigChecker locates and parses config.ini
//   - files: FileChecker requires the data file next to the working
//     directory or the config file
//   - process: ProcessChecker scans the process table for the server
//   - heartbeat: HeartbeatChecker resolves the heartbeat file, preferring
//     the one named after the PID found by the process stage
//   - link: LinkChecker handshakes with a TCP radio (soft)
//
// # Basic Usage
//
//	cfgCheck := health.NewConfigChecker("", wd)
//	agg := health.NewAggregator(health.AggregatorConfig{
//	    OnStage: reporter.Stage,
//	})
//	_ = agg.Register("config", health.GateHard, cfgCheck)
//	_ = agg.Register("files", health.GateHard,
//	    health.NewFileChecker("fortunes.txt", wd, cfgCheck.Path))
//
//	verdict := agg.Run(ctx)
//	reporter.Verdict(verdict)
//	os.Exit(verdict.ExitCode())
//
// # Output
//
// Reporter prints "[stage] PASS|WARN|FAIL|SKIP: message" per stage and a
// final HEALTHY or "UNHEALTHY: stage: reason" line. WriteJSON renders the
// same Verdict as a single JSON object.
package health
