package procscan

import (
	"context"
	"slices"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Description is informational detail about a live process.
type Description struct {
	PID     int
	Name    string
	Status  []string
	Started time.Time
}

// Zombie reports whether the kernel lists the process as a zombie.
func (d Description) Zombie() bool {
	return slices.Contains(d.Status, process.Zombie)
}

// Uptime returns how long the process has been running at now.
func (d Description) Uptime(now time.Time) time.Duration {
	if d.Started.IsZero() {
		return 0
	}
	return now.Sub(d.Started)
}

// Describe gathers name, state and start time of pid from the process table
// gopsutil finds through ctx (see ProcFS.WithRoot), the host's by default.
// Missing pieces are left empty; the call fails only if the process
// cannot be opened at all.
func Describe(ctx context.Context, pid int) (Description, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return Description{}, err
	}

	d := Description{PID: pid}
	if name, err := p.NameWithContext(ctx); err == nil {
		d.Name = name
	}
	if status, err := p.StatusWithContext(ctx); err == nil {
		d.Status = status
	}
	if created, err := p.CreateTimeWithContext(ctx); err == nil && created > 0 {
		d.Started = time.UnixMilli(created)
	}
	return d, nil
}
