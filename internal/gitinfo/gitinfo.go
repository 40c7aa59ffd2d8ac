// Package gitinfo resolves repository metadata for the log header.
package gitinfo

import (
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel errors distinguishing the two expected failure modes from real
// resource errors. Callers check them with errors.Is.
var (
	// ErrGitUnavailable indicates the git executable is not on PATH.
	ErrGitUnavailable = errors.New("git executable not found")

	// ErrNotARepository indicates the path is not inside a git repository.
	ErrNotARepository = errors.New("not a git repository")
)

// dateLayout matches the date line format written to log headers.
const dateLayout = "Date: %Y-%m-%d, Time: %H-%M-%S"

// Info describes the HEAD commit of a repository.
type Info struct {
	Hash        string
	Message     string
	AuthorName  string
	AuthorEmail string
	AuthoredAt  string
}

// Resolve returns HEAD commit metadata for the repository containing dir.
// It returns ErrGitUnavailable when no git binary is installed and
// ErrNotARepository when dir is not inside a work tree; both are expected
// conditions, not faults.
func Resolve(dir string) (Info, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return Info{}, ErrGitUnavailable
	}

	if err := exec.Command("git", "-C", dir, "rev-parse", "--git-dir").Run(); err != nil {
		return Info{}, ErrNotARepository
	}

	out, err := exec.Command("git", "-C", dir, "log", "-1",
		"--format=%H%n%s%n%an%n%ae%n%ad",
		"--date=format:"+dateLayout,
	).Output()
	if err != nil {
		// A repository with no commits, or any other git failure, reads
		// the same as no repository for the header's purposes.
		return Info{}, errors.WithSecondaryError(ErrNotARepository, err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) < 5 {
		return Info{}, errors.Newf("unexpected git log output: %q", string(out))
	}

	return Info{
		Hash:        lines[0],
		Message:     lines[1],
		AuthorName:  lines[2],
		AuthorEmail: lines[3],
		AuthoredAt:  lines[4],
	}, nil
}
