package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// ErrNoAppName indicates a directory was requested without an
// application name to nest it under.
var ErrNoAppName = errors.New("application name is required")

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// StateHome returns the XDG state home directory, the conventional place
// for logs and other data that should survive restarts but is not
// user-facing output.
// On Linux: ~/.local/state
func StateHome() string {
	return xdg.StateHome
}

// DefaultLogDir returns the log directory for the named application,
// creating it if necessary: <StateHome>/<app>/logs.
func DefaultLogDir(app string) (string, error) {
	if app == "" {
		return "", ErrNoAppName
	}
	dir := filepath.Join(xdg.StateHome, app, "logs")
	if err := EnsureDir(dir, 0); err != nil {
		return "", errors.Wrapf(err, "creating log directory %s", dir)
	}
	return dir, nil
}
