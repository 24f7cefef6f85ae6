package validation

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"capmcli/internal/dataload"
	apperrors "capmcli/internal/errors"
)

// InputValidator checks the input file before it is parsed
type InputValidator struct {
	logger *slog.Logger
}

// NewInputValidator creates a new input validator
func NewInputValidator(logger *slog.Logger) *InputValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &InputValidator{
		logger: logger,
	}
}

// ValidateInputFile checks that path names a readable regular file with a
// supported extension. Office lock files ("~$name.xlsx") are rejected.
func (v *InputValidator) ValidateInputFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.NewDataError("no input file given", nil)
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		v.logger.Error("Input file does not exist",
			slog.String("file", path))
		return apperrors.NewDataError("input file "+path+" not found", err)
	}
	if err != nil {
		v.logger.Error("Failed to stat input file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewDataError("cannot stat input file "+path, err)
	}
	if info.IsDir() {
		v.logger.Error("Input path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewDataError(path+" is a directory, not a file", nil)
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Refusing temporary Excel lock file",
			slog.String("file", path))
		return apperrors.NewDataError(path+" is a temporary Excel lock file", nil)
	}

	format, err := dataload.DetectFormat(path)
	if err != nil {
		v.logger.Error("Input file has an unsupported format",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Input file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewDataError("input file "+path+" is not readable", err)
	}
	file.Close()

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.String("format", string(format)),
		slog.Int64("size", info.Size()))
	return nil
}
