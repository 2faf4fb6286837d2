package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonwraymond/bbshealth/config"
	"github.com/jonwraymond/bbshealth/health"
	"github.com/jonwraymond/bbshealth/heartbeat"
	"github.com/jonwraymond/bbshealth/linkprobe"
	"github.com/jonwraymond/bbshealth/observe"
	"github.com/jonwraymond/bbshealth/procscan"
)

const serviceName = "bbs-healthcheck"

// Exit codes.
const (
	exitHealthy   = 0
	exitUnhealthy = 1
)

type flagValues struct {
	configPath     string
	dataFile       string
	procRoot       string
	heartbeatFile  string
	maxAge         time.Duration
	rxTimeout      time.Duration
	processMarker  string
	linkAttempts   int
	linkRetryDelay time.Duration
	connectTimeout time.Duration
	readTimeout    time.Duration
	logLevel       string
	traceExporter  string
	json           bool
}

func (f *flagValues) register(fs *pflag.FlagSet) {
	d := config.DefaultOptions()
	fs.StringVarP(&f.configPath, "config", "c", "", "BBS config file (default ./config.ini)")
	fs.StringVar(&f.dataFile, "data-file", d.DataFile, "data file that must be readable next to the config or in the working directory")
	fs.StringVar(&f.procRoot, "proc-root", d.ProcRoot, "procfs mount used to scan processes")
	fs.StringVar(&f.heartbeatFile, "heartbeat-file", "", "exact heartbeat path (overrides "+config.EnvHeartbeatFile+")")
	fs.DurationVar(&f.maxAge, "max-age", d.MaxAge, "maximum heartbeat age")
	fs.DurationVar(&f.rxTimeout, "rx-timeout", d.RxTimeout, "maximum time since data was last received (overrides "+config.EnvRxTimeout+")")
	fs.StringVar(&f.processMarker, "process-marker", d.ProcessMarker, "command-line fragment identifying the server process")
	fs.IntVar(&f.linkAttempts, "link-attempts", d.LinkAttempts, "radio handshake attempts")
	fs.DurationVar(&f.linkRetryDelay, "link-retry-delay", d.LinkRetryDelay, "fixed delay between radio handshake attempts")
	fs.DurationVar(&f.connectTimeout, "connect-timeout", d.ConnectTimeout, "radio connect timeout")
	fs.DurationVar(&f.readTimeout, "read-timeout", d.ReadTimeout, "radio read timeout")
	fs.StringVar(&f.logLevel, "log-level", d.LogLevel, "log level: debug|info|warn|error (overrides "+config.EnvLogLevel+")")
	fs.StringVar(&f.traceExporter, "trace-exporter", d.TraceExporter, "span exporter: none|stdout|otlp")
	fs.BoolVar(&f.json, "json", false, "also print the verdict as JSON")
}

// apply overlays explicitly set flags on env-derived options.
func (f *flagValues) apply(fs *pflag.FlagSet, opts config.Options) config.Options {
	set := func(name string) bool { return fs.Changed(name) }

	if set("config") {
		opts.ConfigPath = f.configPath
	}
	if set("data-file") {
		opts.DataFile = f.dataFile
	}
	if set("proc-root") {
		opts.ProcRoot = f.procRoot
	}
	if set("heartbeat-file") {
		opts.HeartbeatFile = f.heartbeatFile
	}
	if set("max-age") {
		opts.MaxAge = f.maxAge
	}
	if set("rx-timeout") {
		opts.RxTimeout = f.rxTimeout
	}
	if set("process-marker") {
		opts.ProcessMarker = f.processMarker
	}
	if set("link-attempts") {
		opts.LinkAttempts = f.linkAttempts
	}
	if set("link-retry-delay") {
		opts.LinkRetryDelay = f.linkRetryDelay
	}
	if set("connect-timeout") {
		opts.ConnectTimeout = f.connectTimeout
	}
	if set("read-timeout") {
		opts.ReadTimeout = f.readTimeout
	}
	if set("log-level") {
		opts.LogLevel = f.logLevel
	}
	if set("trace-exporter") {
		opts.TraceExporter = f.traceExporter
	}
	opts.JSON = f.json
	return opts
}

func newRootCmd(stdout, stderr io.Writer, lookup config.LookupEnv, code *int) *cobra.Command {
	var flags flagValues

	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Check that the BBS server, its heartbeat and its radio link are healthy",
		Long: `Runs the BBS health checks in order: config, files, process, heartbeat
and, for TCP radios, link. The first failing hard check ends the run with
exit code 1. The link check is informational and never changes the exit
code.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := config.LoadOptions(lookup)
			if err != nil {
				return err
			}
			opts = flags.apply(cmd.Flags(), opts)
			if err := opts.Validate(); err != nil {
				return err
			}

			*code = run(cmd.Context(), opts, stdout, stderr)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	flags.register(cmd.Flags())
	return cmd
}

// execute runs the command line and returns the process exit code.
// Invalid usage and unusable options count as unhealthy.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer, lookup config.LookupEnv) int {
	code := exitHealthy
	cmd := newRootCmd(stdout, stderr, lookup, &code)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stdout, "UNHEALTHY: startup: %v\n", err)
		return exitUnhealthy
	}
	return code
}

// run wires the stages from opts, runs them and reports the verdict.
func run(ctx context.Context, opts config.Options, stdout, stderr io.Writer) int {
	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: serviceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:  opts.TraceExporter != config.DefaultTraceExporter,
			Exporter: opts.TraceExporter,
			Writer:   stderr,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   opts.LogLevel,
			Writer:  stderr,
		},
	})
	if err != nil {
		fmt.Fprintf(stdout, "UNHEALTHY: startup: %v\n", err)
		return exitUnhealthy
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()
	logger := obs.Logger()

	reporter := health.NewReporter(stdout)
	agg := buildAggregator(opts, logger, observe.MiddlewareFromObserver(obs), reporter)

	reporter.Start()
	verdict := agg.Run(ctx)
	reporter.Verdict(verdict)

	if opts.JSON {
		if err := health.WriteJSON(stdout, verdict); err != nil {
			logger.Error(ctx, "write json verdict", observe.F("error", err.Error()))
		}
	}

	if !verdict.Passed {
		return exitUnhealthy
	}
	return exitHealthy
}

func buildAggregator(opts config.Options, logger observe.Logger, mw *observe.Middleware, reporter *health.Reporter) *health.Aggregator {
	cfgCheck := health.NewConfigChecker(opts.ConfigPath, opts.WorkDir)

	procFS := procscan.NewProcFS(opts.ProcRoot)
	procCheck := health.NewProcessChecker(health.ProcessCheckerConfig{
		Prober:   procscan.NewProber(procFS, opts.ProcessMarker, procscan.WithLogger(logger)),
		Describe: procFS.Describe,
		Logger:   logger,
	})

	hbCheck := health.NewHeartbeatChecker(health.HeartbeatCheckerConfig{
		Resolver: heartbeat.NewResolver(heartbeat.ResolveOptions{
			Override: opts.HeartbeatFile,
			WorkDir:  opts.WorkDir,
			TempDir:  opts.TempDir,
		}, logger),
		PID:    procCheck.PID,
		Limits: heartbeat.Limits{MaxAge: opts.MaxAge, RxTimeout: opts.RxTimeout},
		Logger: logger,
	})

	linkCheck := health.NewLinkChecker(health.LinkCheckerConfig{
		Radio: cfgCheck.Radio,
		Probe: linkprobe.Config{
			ConnectTimeout: opts.ConnectTimeout,
			ReadTimeout:    opts.ReadTimeout,
			Attempts:       opts.LinkAttempts,
			RetryDelay:     opts.LinkRetryDelay,
		},
		Logger: logger,
	})

	agg := health.NewAggregator(health.AggregatorConfig{
		Middleware: mw,
		OnStage:    reporter.Stage,
	})
	// Names are distinct constants; Register cannot fail here.
	_ = agg.Register(cfgCheck.Name(), health.GateHard, cfgCheck)
	_ = agg.Register("files", health.GateHard, health.NewFileChecker(opts.DataFile, opts.WorkDir, cfgCheck.Path))
	_ = agg.Register(procCheck.Name(), health.GateHard, procCheck)
	_ = agg.Register(hbCheck.Name(), health.GateHard, hbCheck)
	_ = agg.Register(linkCheck.Name(), health.GateSoft, linkCheck)
	return agg
}
