package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

// setStateHome points the XDG state home at a temp dir for one test.
func setStateHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return dir
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := EnsureDir(dir, 0); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected a directory")
	}
	if got := info.Mode().Perm(); got != DefaultDirPerm {
		t.Errorf("permissions = %o, want %o", got, DefaultDirPerm)
	}

	// Idempotent on an existing directory.
	if err := EnsureDir(dir, 0); err != nil {
		t.Errorf("EnsureDir on existing dir: %v", err)
	}
}

func TestEnsureDir_ExplicitPerm(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "open")

	if err := EnsureDir(dir, 0o755); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm(); got != 0o755 {
		t.Errorf("permissions = %o, want 755", got)
	}
}

func TestDefaultLogDir(t *testing.T) {
	state := setStateHome(t)

	dir, err := DefaultLogDir("myapp")
	if err != nil {
		t.Fatalf("DefaultLogDir: %v", err)
	}

	want := filepath.Join(state, "myapp", "logs")
	if dir != want {
		t.Errorf("DefaultLogDir = %q, want %q", dir, want)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("log directory should be created: %v", err)
	}
}

func TestDefaultLogDir_RequiresAppName(t *testing.T) {
	_, err := DefaultLogDir("")
	if !errors.Is(err, ErrNoAppName) {
		t.Errorf("DefaultLogDir(\"\") = %v, want ErrNoAppName", err)
	}
}

func TestStateHome_TracksEnvironment(t *testing.T) {
	state := setStateHome(t)
	if got := StateHome(); got != state {
		t.Errorf("StateHome() = %q, want %q", got, state)
	}
}
