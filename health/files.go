package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileChecker verifies a required data file is readable in the working
// directory or next to the config file. One location is enough.
type FileChecker struct {
	fileName   string
	workDir    string
	configPath func() string
}

// NewFileChecker creates a checker for fileName. configPath is consulted at
// check time and may return "".
func NewFileChecker(fileName, workDir string, configPath func() string) *FileChecker {
	if configPath == nil {
		configPath = func() string { return "" }
	}
	return &FileChecker{fileName: fileName, workDir: workDir, configPath: configPath}
}

// Name returns the name of this checker.
func (f *FileChecker) Name() string {
	return "files"
}

// Locations returns the candidate paths in the order they are tried.
func (f *FileChecker) Locations() []string {
	if filepath.IsAbs(f.fileName) {
		return []string{f.fileName}
	}

	var locations []string
	seen := make(map[string]struct{}, 2)
	add := func(dir string) {
		path := filepath.Clean(filepath.Join(dir, f.fileName))
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		locations = append(locations, path)
	}

	add(f.workDir)
	if cfg := f.configPath(); cfg != "" {
		add(filepath.Dir(cfg))
	}
	return locations
}

// Check performs the file accessibility check.
func (f *FileChecker) Check(_ context.Context) Result {
	locations := f.Locations()
	problems := make(map[string]any, len(locations))

	for _, path := range locations {
		err := readable(path)
		if err == nil {
			return Healthy(fmt.Sprintf("%s readable at %s", f.fileName, path)).
				WithDetails(map[string]any{"path": path})
		}
		problems[path] = err.Error()
	}

	return Unhealthy(
		fmt.Sprintf("%s not found or unreadable; checked %s", f.fileName, strings.Join(locations, ", ")),
		fmt.Errorf("%w: %s", ErrMissingArtifact, f.fileName),
	).WithDetails(problems)
}

func readable(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
