package procscan

import (
	"context"
	"fmt"
)

type fakeProc struct {
	cmdline string
	readErr error
	signal  Signal
	sigErr  error
}

type fakeTable struct {
	pids    []int
	listErr error
	procs   map[int]fakeProc
	reads   []int
	signals []int
}

func (f *fakeTable) ListProcessIDs(context.Context) ([]int, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.pids, nil
}

func (f *fakeTable) ReadCommandLine(_ context.Context, pid int) (string, error) {
	f.reads = append(f.reads, pid)
	p, ok := f.procs[pid]
	if !ok {
		return "", fmt.Errorf("%w: pid %d", ErrNotFound, pid)
	}
	return p.cmdline, p.readErr
}

func (f *fakeTable) SignalExists(pid int) (Signal, error) {
	f.signals = append(f.signals, pid)
	p := f.procs[pid]
	return p.signal, p.sigErr
}
