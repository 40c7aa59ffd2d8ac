// Package paths provides cross-platform path resolution for logbook's
// directories.
//
// The package wraps github.com/adrg/xdg for XDG Base Directory
// Specification compliance. Log files default to the XDG state home
// (~/.local/state on Linux), which is the conventional location for data
// a program keeps between runs without being user-facing output:
//
//	dir, err := paths.DefaultLogDir("mytool") // ~/.local/state/mytool/logs
package paths
