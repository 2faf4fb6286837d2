package procscan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProber_FindsMarker(t *testing.T) {
	table := &fakeTable{
		pids: []int{1, 20, 31},
		procs: map[int]fakeProc{
			1:  {cmdline: "/sbin/init"},
			20: {cmdline: "python3 server.py --config config.ini", signal: SignalDelivered},
			31: {cmdline: "python3 server.py", signal: SignalDelivered},
		},
	}

	res, err := NewProber(table, "server.py", WithSelfPID(-1)).Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 20, res.PID)
	assert.Equal(t, SignalDelivered, res.Signal)
	assert.Equal(t, []int{20}, table.signals)
}

func TestProber_PermissionDeniedCountsAsFound(t *testing.T) {
	table := &fakeTable{
		pids: []int{7},
		procs: map[int]fakeProc{
			7: {cmdline: "python server.py", signal: SignalPermissionDenied},
		},
	}

	res, err := NewProber(table, "server.py", WithSelfPID(-1)).Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 7, res.PID)
	assert.Equal(t, SignalPermissionDenied, res.Signal)
}

func TestProber_ExitedMidScanContinues(t *testing.T) {
	table := &fakeTable{
		pids: []int{5, 9},
		procs: map[int]fakeProc{
			5: {cmdline: "python server.py", signal: SignalNotFound},
			9: {cmdline: "python server.py", signal: SignalDelivered},
		},
	}

	res, err := NewProber(table, "server.py", WithSelfPID(-1)).Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 9, res.PID)
	assert.Equal(t, []int{5, 9}, table.signals)
}

func TestProber_UnreadableEntriesSkipped(t *testing.T) {
	table := &fakeTable{
		pids: []int{2, 3, 4},
		procs: map[int]fakeProc{
			3: {readErr: errors.New("permission denied")},
			4: {cmdline: "server.py", signal: SignalDelivered},
		},
	}

	res, err := NewProber(table, "server.py", WithSelfPID(-1)).Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 4, res.PID)
	assert.Equal(t, 3, res.Scanned)
}

func TestProber_SignalErrorSkipped(t *testing.T) {
	table := &fakeTable{
		pids: []int{2, 3},
		procs: map[int]fakeProc{
			2: {cmdline: "server.py", sigErr: errors.New("EINVAL")},
			3: {cmdline: "server.py", signal: SignalDelivered},
		},
	}

	res, err := NewProber(table, "server.py", WithSelfPID(-1)).Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.PID)
}

func TestProber_NotFound(t *testing.T) {
	table := &fakeTable{
		pids: []int{1, 2},
		procs: map[int]fakeProc{
			1: {cmdline: "/sbin/init"},
			2: {cmdline: "bash"},
		},
	}

	res, err := NewProber(table, "server.py", WithSelfPID(-1)).Probe(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Zero(t, res.PID)
	assert.Empty(t, table.signals)
}

func TestProber_SkipsSelf(t *testing.T) {
	table := &fakeTable{
		pids: []int{10, 11},
		procs: map[int]fakeProc{
			10: {cmdline: "bbs-healthcheck --process-marker server.py", signal: SignalDelivered},
			11: {cmdline: "python server.py", signal: SignalDelivered},
		},
	}

	res, err := NewProber(table, "server.py", WithSelfPID(10)).Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 11, res.PID)
	assert.NotContains(t, table.reads, 10)
}

func TestProber_TableErrorsPropagate(t *testing.T) {
	for _, sentinel := range []error{ErrNoProcessInterface, ErrProcessTableEmpty} {
		t.Run(sentinel.Error(), func(t *testing.T) {
			table := &fakeTable{listErr: sentinel}
			_, err := NewProber(table, "").Probe(context.Background())
			require.ErrorIs(t, err, sentinel)
		})
	}
}

func TestProber_DefaultMarker(t *testing.T) {
	assert.Equal(t, DefaultMarker, NewProber(&fakeTable{}, "").Marker())
}

func TestProber_CancelledContext(t *testing.T) {
	table := &fakeTable{pids: []int{1}, procs: map[int]fakeProc{1: {cmdline: "server.py"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProber(table, "server.py", WithSelfPID(-1)).Probe(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
