package procscan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/common"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

var (
	// ErrNoProcessInterface indicates the process table root cannot be read.
	ErrNoProcessInterface = errors.New("procscan: no process interface available")

	// ErrProcessTableEmpty indicates the process table root lists no processes.
	ErrProcessTableEmpty = errors.New("procscan: process interface available but empty")

	// ErrNotFound indicates the process disappeared.
	ErrNotFound = errors.New("procscan: process not found")
)

// Signal is the outcome of a signal-0 liveness delivery.
type Signal int

const (
	// SignalDelivered means the process exists and is signalable.
	SignalDelivered Signal = iota
	// SignalNotFound means the process no longer exists.
	SignalNotFound
	// SignalPermissionDenied means the process exists but belongs to someone else.
	SignalPermissionDenied
)

func (s Signal) String() string {
	switch s {
	case SignalDelivered:
		return "delivered"
	case SignalNotFound:
		return "not-found"
	case SignalPermissionDenied:
		return "permission-denied"
	default:
		return "unknown"
	}
}

// Table is the narrow view of the OS process table the prober needs.
type Table interface {
	// ListProcessIDs returns every visible process id in ascending order.
	ListProcessIDs(ctx context.Context) ([]int, error)

	// ReadCommandLine returns the command line of pid with arguments joined
	// by spaces. It fails with ErrNotFound when the process is gone.
	ReadCommandLine(ctx context.Context, pid int) (string, error)

	// SignalExists delivers a no-op signal to pid.
	SignalExists(pid int) (Signal, error)
}

// DefaultProcRoot is where Linux exposes the process table.
const DefaultProcRoot = "/proc"

// ProcFS reads the process table from a procfs mount.
type ProcFS struct {
	root string
}

// NewProcFS returns a Table backed by the procfs mount at root.
func NewProcFS(root string) *ProcFS {
	if root == "" {
		root = DefaultProcRoot
	}
	return &ProcFS{root: root}
}

// Root returns the procfs mount point.
func (p *ProcFS) Root() string {
	return p.root
}

// WithRoot points gopsutil calls made with ctx at the procfs mounted at root.
func (p *ProcFS) WithRoot(ctx context.Context) context.Context {
	return context.WithValue(ctx, common.EnvKey, common.EnvMap{common.HostProcEnvKey: p.root})
}

// ListProcessIDs lists the numeric entries of the procfs root in ascending
// order.
func (p *ProcFS) ListProcessIDs(ctx context.Context) ([]int, error) {
	raw, err := process.PidsWithContext(p.WithRoot(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoProcessInterface, p.root, err)
	}

	pids := make([]int, 0, len(raw))
	for _, pid := range raw {
		if pid > 0 {
			pids = append(pids, int(pid))
		}
	}

	if len(pids) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrProcessTableEmpty, p.root)
	}

	sort.Ints(pids)
	return pids, nil
}

// ReadCommandLine reads the argv of pid joined by spaces. Invalid UTF-8 is
// replaced rather than rejected.
func (p *ProcFS) ReadCommandLine(ctx context.Context, pid int) (string, error) {
	proc := &process.Process{Pid: int32(pid)}
	line, err := proc.CmdlineWithContext(p.WithRoot(ctx))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ESRCH) {
			return "", fmt.Errorf("%w: pid %d", ErrNotFound, pid)
		}
		return "", fmt.Errorf("read cmdline of pid %d: %w", pid, err)
	}
	return sanitizeCommandLine(line), nil
}

// Describe gathers informational details of pid from this procfs root.
func (p *ProcFS) Describe(ctx context.Context, pid int) (Description, error) {
	return Describe(p.WithRoot(ctx), pid)
}

// SignalExists sends signal 0 to pid.
func (p *ProcFS) SignalExists(pid int) (Signal, error) {
	return signalZero(pid)
}

func sanitizeCommandLine(line string) string {
	return strings.TrimSpace(strings.ToValidUTF8(line, "\uFFFD"))
}

func signalZero(pid int) (Signal, error) {
	err := unix.Kill(pid, 0)
	switch {
	case err == nil:
		return SignalDelivered, nil
	case errors.Is(err, unix.ESRCH):
		return SignalNotFound, nil
	case errors.Is(err, unix.EPERM):
		return SignalPermissionDenied, nil
	default:
		return SignalNotFound, fmt.Errorf("signal pid %d: %w", pid, err)
	}
}

var _ Table = (*ProcFS)(nil)
