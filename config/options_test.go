package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptions_Defaults(t *testing.T) {
	opts, err := LoadOptions(mapLookup(nil))
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, wd, opts.WorkDir)
	assert.Equal(t, "/tmp", opts.TempDir)
	assert.Empty(t, opts.HeartbeatFile)
	assert.Equal(t, DefaultRxTimeout, opts.RxTimeout)
	assert.Equal(t, DefaultMaxAge, opts.MaxAge)
	assert.Equal(t, DefaultDataFile, opts.DataFile)
	assert.Equal(t, DefaultProcessMarker, opts.ProcessMarker)
	assert.Equal(t, DefaultLogLevel, opts.LogLevel)
	require.NoError(t, opts.Validate())
}

func TestLoadOptions_FromEnv(t *testing.T) {
	opts, err := LoadOptions(mapLookup(map[string]string{
		EnvHeartbeatFile: "${DATA}/bbs_heartbeat",
		"DATA":           "/data",
		EnvRxTimeout:     "900",
		EnvLogLevel:      "debug",
		EnvTempDir:       "/scratch",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/data/bbs_heartbeat", opts.HeartbeatFile)
	assert.Equal(t, 900*time.Second, opts.RxTimeout)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.Equal(t, "/scratch", opts.TempDir)
}

func TestLoadOptions_HeartbeatMissingVar(t *testing.T) {
	_, err := LoadOptions(mapLookup(map[string]string{
		EnvHeartbeatFile: "${DATA}/bbs_heartbeat",
	}))
	require.ErrorIs(t, err, ErrMissingEnv)
	assert.Contains(t, err.Error(), EnvHeartbeatFile)
}

func TestParseRxTimeout(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", DefaultRxTimeout},
		{"300", 300 * time.Second},
		{" 120 ", 120 * time.Second},
		{"0", DefaultRxTimeout},
		{"-5", DefaultRxTimeout},
		{"abc", DefaultRxTimeout},
		{"1.5", DefaultRxTimeout},
		{"9300000000", time.Duration(maxRxTimeoutSeconds) * time.Second},
		{"99999999999999999999", DefaultRxTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRxTimeout(tt.raw))
		})
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"max age", func(o *Options) { o.MaxAge = 0 }},
		{"rx timeout", func(o *Options) { o.RxTimeout = -time.Second }},
		{"attempts", func(o *Options) { o.LinkAttempts = 0 }},
		{"timeouts", func(o *Options) { o.ReadTimeout = 0 }},
		{"marker", func(o *Options) { o.ProcessMarker = " " }},
		{"data file", func(o *Options) { o.DataFile = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			require.ErrorIs(t, opts.Validate(), ErrInvalidOption)
		})
	}
}
