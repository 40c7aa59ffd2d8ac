package config

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
)

// Validation errors for configuration fields.
var (
	// ErrInvalidLevel indicates an unrecognized severity name.
	ErrInvalidLevel = errors.New("invalid log level")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// ParseLevel maps a configured severity name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, &LevelError{Level: name, Err: ErrInvalidLevel}
	}
}

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if _, err := ParseLevel(cfg.FileLevel); err != nil {
		errs = append(errs, err)
	}

	if cfg.OutputDir != "" {
		if err := validatePath(cfg.OutputDir); err != nil {
			errs = append(errs, &PathError{
				Field: "output_dir",
				Path:  cfg.OutputDir,
				Err:   err,
			})
		}
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	// Clean the path and check it's not empty after cleaning
	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// LevelError represents an error for a specific severity name.
type LevelError struct {
	Level string
	Err   error
}

func (e *LevelError) Error() string {
	return e.Err.Error() + ": " + e.Level
}

func (e *LevelError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
