package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by LoadOptions.
const (
	EnvHeartbeatFile = "BBS_HEARTBEAT_FILE"
	EnvRxTimeout     = "HEALTHCHECK_RX_TIMEOUT"
	EnvLogLevel      = "BBS_HEALTHCHECK_LOG_LEVEL"
	EnvTempDir       = "TMPDIR"
)

// Run defaults.
const (
	DefaultDataFile       = "fortunes.txt"
	DefaultProcessMarker  = "server.py"
	DefaultProcRoot       = "/proc"
	DefaultMaxAge         = 60 * time.Second
	DefaultRxTimeout      = 600 * time.Second
	DefaultLinkAttempts   = 3
	DefaultLinkRetryDelay = time.Second
	DefaultConnectTimeout = 3 * time.Second
	DefaultReadTimeout    = 2 * time.Second
	DefaultLogLevel       = "warn"
	DefaultTraceExporter  = "none"
)

// Options is everything a health-check run needs from its environment.
type Options struct {
	// ConfigPath is an explicit config file; empty means WorkDir/config.ini.
	ConfigPath string
	DataFile   string
	WorkDir    string
	TempDir    string
	ProcRoot   string

	// HeartbeatFile, when set, is the only heartbeat location consulted.
	HeartbeatFile string
	MaxAge        time.Duration
	RxTimeout     time.Duration

	ProcessMarker string

	LinkAttempts   int
	LinkRetryDelay time.Duration
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	LogLevel      string
	TraceExporter string
	JSON          bool
}

// DefaultOptions returns Options with every default applied and no
// environment consulted.
func DefaultOptions() Options {
	return Options{
		DataFile:       DefaultDataFile,
		TempDir:        "/tmp",
		ProcRoot:       DefaultProcRoot,
		MaxAge:         DefaultMaxAge,
		RxTimeout:      DefaultRxTimeout,
		ProcessMarker:  DefaultProcessMarker,
		LinkAttempts:   DefaultLinkAttempts,
		LinkRetryDelay: DefaultLinkRetryDelay,
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
		LogLevel:       DefaultLogLevel,
		TraceExporter:  DefaultTraceExporter,
	}
}

// LoadOptions captures the environment once. lookup is usually
// os.LookupEnv. The working directory is taken from the process.
func LoadOptions(lookup LookupEnv) (Options, error) {
	opts := DefaultOptions()

	wd, err := os.Getwd()
	if err != nil {
		return Options{}, fmt.Errorf("resolve working directory: %w", err)
	}
	opts.WorkDir = wd

	if dir, ok := lookup(EnvTempDir); ok && dir != "" {
		opts.TempDir = dir
	}

	if raw, ok := lookup(EnvHeartbeatFile); ok && strings.TrimSpace(raw) != "" {
		path, err := ExpandStrict(strings.TrimSpace(raw), lookup)
		if err != nil {
			return Options{}, fmt.Errorf("%s: %w", EnvHeartbeatFile, err)
		}
		opts.HeartbeatFile = path
	}

	raw, _ := lookup(EnvRxTimeout)
	opts.RxTimeout = ParseRxTimeout(raw)

	if level, ok := lookup(EnvLogLevel); ok && level != "" {
		opts.LogLevel = level
	}

	return opts, nil
}

// maxRxTimeoutSeconds is the largest whole-second count a time.Duration holds.
const maxRxTimeoutSeconds = math.MaxInt64 / int64(time.Second)

// ParseRxTimeout reads whole seconds. Empty, unparsable and non-positive
// values yield DefaultRxTimeout; values past the time.Duration range are
// clamped to it.
func ParseRxTimeout(raw string) time.Duration {
	secs, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || secs <= 0 {
		return DefaultRxTimeout
	}
	if secs > maxRxTimeoutSeconds {
		secs = maxRxTimeoutSeconds
	}
	return time.Duration(secs) * time.Second
}

// Validate checks option ranges after flags have been applied.
func (o Options) Validate() error {
	switch {
	case o.MaxAge <= 0:
		return fmt.Errorf("%w: max age must be positive, got %s", ErrInvalidOption, o.MaxAge)
	case o.RxTimeout <= 0:
		return fmt.Errorf("%w: rx timeout must be positive, got %s", ErrInvalidOption, o.RxTimeout)
	case o.LinkAttempts <= 0:
		return fmt.Errorf("%w: link attempts must be positive, got %d", ErrInvalidOption, o.LinkAttempts)
	case o.ConnectTimeout <= 0 || o.ReadTimeout <= 0:
		return fmt.Errorf("%w: network timeouts must be positive", ErrInvalidOption)
	case strings.TrimSpace(o.ProcessMarker) == "":
		return fmt.Errorf("%w: process marker must not be empty", ErrInvalidOption)
	case strings.TrimSpace(o.DataFile) == "":
		return fmt.Errorf("%w: data file must not be empty", ErrInvalidOption)
	}
	return nil
}
