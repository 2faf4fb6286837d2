package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/bbshealth/config"
	"github.com/jonwraymond/bbshealth/heartbeat"
)

type fixture struct {
	dir  string
	opts config.Options
}

// newFixture lays out a BBS working directory, a fake procfs holding the
// test runner's parent process, and a fresh heartbeat.
func newFixture(t *testing.T, iniBody string) *fixture {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.ini"), []byte(iniBody), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fortunes.txt"), []byte("hello\n%\n"), 0o644))

	procRoot := filepath.Join(dir, "proc")
	pidDir := filepath.Join(procRoot, strconv.Itoa(os.Getppid()))
	require.NoError(t, os.MkdirAll(pidDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pidDir, "cmdline"), []byte("python3\x00server.py\x00"), 0o644))

	now := float64(time.Now().Unix())
	writeBeat(t, filepath.Join(dir, "run", heartbeat.BaseName), fmt.Sprintf("%.1f|CONNECTED|true|%.1f", now, now))

	opts := config.DefaultOptions()
	opts.WorkDir = dir
	opts.TempDir = filepath.Join(dir, "tmp")
	opts.ProcRoot = procRoot
	opts.LinkRetryDelay = time.Millisecond
	opts.ReadTimeout = 200 * time.Millisecond
	return &fixture{dir: dir, opts: opts}
}

func writeBeat(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func runFixture(t *testing.T, f *fixture) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), f.opts, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_HealthySerial(t *testing.T) {
	f := newFixture(t, "[interface]\ntype = serial\n")

	code, out, _ := runFixture(t, f)

	assert.Equal(t, exitHealthy, code, out)
	assert.Contains(t, out, "[config] PASS")
	assert.Contains(t, out, "[files] PASS")
	assert.Contains(t, out, fmt.Sprintf("[process] PASS: server.py running as PID %d", os.Getppid()))
	assert.Contains(t, out, "[heartbeat] PASS")
	assert.Contains(t, out, "[link] SKIP")
	assert.True(t, strings.HasSuffix(out, "HEALTHY\n"))
}

func TestRun_TCPRefusedStillHealthy(t *testing.T) {
	f := newFixture(t, fmt.Sprintf("[interface]\ntype = tcp\nhostname = 127.0.0.1\nport = %d\n", closedPort(t)))

	code, out, _ := runFixture(t, f)

	assert.Equal(t, exitHealthy, code, out)
	assert.Contains(t, out, "[link] PASS")
	assert.Contains(t, out, "connection refused")
}

func TestRun_LinkFailureDoesNotChangeExitCode(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_, _ = conn.Write([]byte("??"))
			_ = conn.Close()
		}
	}()

	f := newFixture(t, fmt.Sprintf("[interface]\ntype = tcp\nhostname = 127.0.0.1\nport = %d\n", ln.Addr().(*net.TCPAddr).Port))
	f.opts.LinkAttempts = 1

	code, out, _ := runFixture(t, f)

	assert.Equal(t, exitHealthy, code, out)
	assert.Contains(t, out, "[link] WARN")
	assert.True(t, strings.HasSuffix(out, "HEALTHY\n"))
}

func TestRun_NoConfig(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, os.Remove(filepath.Join(f.dir, "config.ini")))

	code, out, _ := runFixture(t, f)

	assert.Equal(t, exitUnhealthy, code)
	assert.Contains(t, out, "UNHEALTHY: config: no configuration file found")
	assert.NotContains(t, out, "[files]")
}

func TestRun_MissingDataFile(t *testing.T) {
	f := newFixture(t, "[interface]\ntype = serial\n")
	require.NoError(t, os.Remove(filepath.Join(f.dir, "fortunes.txt")))

	code, out, _ := runFixture(t, f)

	assert.Equal(t, exitUnhealthy, code)
	assert.Contains(t, out, "UNHEALTHY: files: fortunes.txt not found or unreadable")
}

func TestRun_ProcessNotFoundStopsBeforeHeartbeat(t *testing.T) {
	f := newFixture(t, "[interface]\ntype = serial\n")
	f.opts.ProcessMarker = "not-the-bbs.py"

	code, out, _ := runFixture(t, f)

	assert.Equal(t, exitUnhealthy, code)
	assert.Contains(t, out, "UNHEALTHY: process: process not found")
	assert.NotContains(t, out, "[heartbeat]")
}

func TestRun_StaleHeartbeat(t *testing.T) {
	f := newFixture(t, "[interface]\ntype = serial\n")
	old := float64(time.Now().Add(-10 * time.Minute).Unix())
	writeBeat(t, filepath.Join(f.dir, "run", heartbeat.BaseName), fmt.Sprintf("%.1f|CONNECTED|true|%.1f", old, old))

	code, out, _ := runFixture(t, f)

	assert.Equal(t, exitUnhealthy, code)
	assert.Contains(t, out, "UNHEALTHY: heartbeat: Heartbeat file too old")
}

func TestRun_HeartbeatOverrideMissing(t *testing.T) {
	f := newFixture(t, "[interface]\ntype = serial\n")
	f.opts.HeartbeatFile = filepath.Join(f.dir, "elsewhere", heartbeat.BaseName)

	code, out, _ := runFixture(t, f)

	assert.Equal(t, exitUnhealthy, code)
	assert.Contains(t, out, "UNHEALTHY: heartbeat: heartbeat file not found")
}

func TestRun_JSONOutput(t *testing.T) {
	f := newFixture(t, "[interface]\ntype = serial\n")
	f.opts.JSON = true

	code, out, _ := runFixture(t, f)
	require.Equal(t, exitHealthy, code, out)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	var resp struct {
		Status string `json:"status"`
		Checks []struct {
			Name string `json:"name"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Len(t, resp.Checks, 5)
}

func TestRun_LogsToStderr(t *testing.T) {
	f := newFixture(t, "[interface]\ntype = serial\n")
	f.opts.LogLevel = "debug"

	_, out, errOut := runFixture(t, f)

	assert.Contains(t, errOut, `"msg":"stage completed"`)
	assert.NotContains(t, out, `"msg"`)
}

func TestExecute_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--no-such-flag"}, &stdout, &stderr, mapEnv(nil))

	assert.Equal(t, exitUnhealthy, code)
	assert.Contains(t, stdout.String(), "UNHEALTHY: startup")
}

func TestExecute_MissingHeartbeatVariable(t *testing.T) {
	var stdout, stderr bytes.Buffer
	env := mapEnv(map[string]string{config.EnvHeartbeatFile: "${BBS_DATA}/bbs_heartbeat"})
	code := execute(context.Background(), nil, &stdout, &stderr, env)

	assert.Equal(t, exitUnhealthy, code)
	assert.Contains(t, stdout.String(), "BBS_DATA")
}

func TestExecute_InvalidOption(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--max-age", "0s"}, &stdout, &stderr, mapEnv(nil))

	assert.Equal(t, exitUnhealthy, code)
	assert.Contains(t, stdout.String(), "max age")
}

func TestExecute_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--version"}, &stdout, &stderr, mapEnv(nil))

	assert.Equal(t, exitHealthy, code)
	assert.Contains(t, stdout.String(), version)
}

func TestFlagValues_Apply(t *testing.T) {
	var flags flagValues
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.register(fs)
	require.NoError(t, fs.Parse([]string{"--max-age", "90s", "--process-marker", "bbs.py", "--json"}))

	base := config.DefaultOptions()
	base.RxTimeout = 900 * time.Second
	base.HeartbeatFile = "/data/bbs_heartbeat"

	got := flags.apply(fs, base)
	assert.Equal(t, 90*time.Second, got.MaxAge)
	assert.Equal(t, "bbs.py", got.ProcessMarker)
	assert.True(t, got.JSON)
	assert.Equal(t, 900*time.Second, got.RxTimeout, "unset flags keep env values")
	assert.Equal(t, "/data/bbs_heartbeat", got.HeartbeatFile)
}

func mapEnv(m map[string]string) config.LookupEnv {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}
