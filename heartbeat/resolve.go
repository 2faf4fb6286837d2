package heartbeat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/bbshealth/observe"
)

// BaseName is the heartbeat file name without a PID suffix.
const BaseName = "bbs_heartbeat"

// RunDirName is the working-directory subfolder searched first.
const RunDirName = "run"

// Candidate is a discovered heartbeat file.
type Candidate struct {
	Path     string
	ModTime  time.Time
	PIDMatch bool
}

// ResolveOptions configures where heartbeat files are looked for.
type ResolveOptions struct {
	// Override is an exact heartbeat path. When set, it is used exclusively.
	Override string

	// WorkDir anchors the run/ search directory.
	WorkDir string

	// TempDir is the platform temp directory searched second.
	TempDir string
}

// SearchDirs returns the ordered directories scanned when no override is set.
func (o ResolveOptions) SearchDirs() []string {
	dirs := make([]string, 0, 2)
	if o.WorkDir != "" {
		dirs = append(dirs, filepath.Join(o.WorkDir, RunDirName))
	}
	if o.TempDir != "" {
		dirs = append(dirs, o.TempDir)
	}
	return dirs
}

// Resolver picks the heartbeat file to evaluate.
type Resolver struct {
	opts   ResolveOptions
	logger observe.Logger
}

// NewResolver creates a Resolver. A nil logger discards diagnostics.
func NewResolver(opts ResolveOptions, logger observe.Logger) *Resolver {
	if logger == nil {
		logger = observe.NewNopLogger()
	}
	return &Resolver{opts: opts, logger: logger}
}

// Resolve returns the best heartbeat candidate for the live server pid.
// A pid of zero or less never PID-matches.
func (r *Resolver) Resolve(ctx context.Context, pid int) (Candidate, error) {
	if r.opts.Override != "" {
		info, err := os.Stat(r.opts.Override)
		if err != nil {
			return Candidate{}, fmt.Errorf("%w: %s", ErrOverrideMissing, r.opts.Override)
		}
		return Candidate{
			Path:     r.opts.Override,
			ModTime:  info.ModTime(),
			PIDMatch: matchesPID(filepath.Base(r.opts.Override), pid),
		}, nil
	}

	dirs := r.opts.SearchDirs()
	candidates := Discover(ctx, dirs, pid, r.logger)
	best, ok := Select(candidates)
	if !ok {
		return Candidate{}, fmt.Errorf("%w in %s", ErrNoCandidates, strings.Join(dirs, ", "))
	}

	r.logger.Debug(ctx, "heartbeat candidate selected",
		observe.F("path", best.Path),
		observe.F("pid_match", best.PIDMatch),
		observe.F("candidates", len(candidates)),
	)
	return best, nil
}

// Discover collects heartbeat candidates from dirs in order. Unreadable
// directories and files are logged and skipped.
func Discover(ctx context.Context, dirs []string, pid int, logger observe.Logger) []Candidate {
	if logger == nil {
		logger = observe.NewNopLogger()
	}

	var candidates []Candidate
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Debug(ctx, "heartbeat search directory unavailable",
				observe.F("dir", dir), observe.F("error", err.Error()))
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !IsHeartbeatName(name) {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				logger.Warn(ctx, "skipping unreadable heartbeat candidate",
					observe.F("path", filepath.Join(dir, name)), observe.F("error", err.Error()))
				continue
			}

			candidates = append(candidates, Candidate{
				Path:     filepath.Join(dir, name),
				ModTime:  info.ModTime(),
				PIDMatch: matchesPID(name, pid),
			})
		}
	}
	return candidates
}

// Select returns the maximum candidate under (PIDMatch desc, ModTime desc).
// Path breaks exact ties so the result does not depend on input order.
func Select(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		return outranks(sorted[i], sorted[j])
	})
	return sorted[0], true
}

func outranks(a, b Candidate) bool {
	if a.PIDMatch != b.PIDMatch {
		return a.PIDMatch
	}
	if !a.ModTime.Equal(b.ModTime) {
		return a.ModTime.After(b.ModTime)
	}
	return a.Path < b.Path
}

// IsHeartbeatName reports whether name is bbs_heartbeat or bbs_heartbeat_<digits>.
func IsHeartbeatName(name string) bool {
	if name == BaseName {
		return true
	}
	suffix, ok := strings.CutPrefix(name, BaseName+"_")
	return ok && isDigits(suffix)
}

// FileName returns the PID-suffixed heartbeat file name.
func FileName(pid int) string {
	return BaseName + "_" + strconv.Itoa(pid)
}

func matchesPID(name string, pid int) bool {
	return pid > 0 && name == FileName(pid)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
