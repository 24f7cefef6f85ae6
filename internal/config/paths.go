package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the directories the CLI resolves relative paths against.
type Paths struct {
	ExecutableDir string
	WorkingDir    string
	LogsDir       string
}

// GetPaths resolves the executable and working directories.
// Log files default to a logs/ directory next to the working directory,
// since the CLI is normally run from the folder holding the input workbook.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	return &Paths{
		ExecutableDir: filepath.Dir(exe),
		WorkingDir:    wd,
		LogsDir:       filepath.Join(wd, "logs"),
	}, nil
}

// Resolve makes a relative path absolute against the working directory.
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.WorkingDir, path)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LogPathResolution logs resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved paths",
		slog.String("executable_dir", p.ExecutableDir),
		slog.String("working_dir", p.WorkingDir),
		slog.String("logs_dir", p.LogsDir))
}
