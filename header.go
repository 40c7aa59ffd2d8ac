package logbook

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/logbook/internal/buildinfo"
	"github.com/thoreinstein/logbook/internal/gitinfo"
)

// lateralSeparator frames each section banner.
const lateralSeparator = "**************"

// Collaborator seams so header tests can run without a git binary or a
// binary carrying build info.
var (
	resolveGit  = gitinfo.Resolve
	listModules = buildinfo.List
)

// writeHeader creates (truncating) the log file and writes the ordered
// header sections, always terminated by a LOGGING banner separating the
// preamble from live log lines. The file is closed on every exit path.
func writeHeader(path string, cfg Config) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating log file %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing log file %s", path)
		}
	}()

	h := &headerWriter{w: f}
	if !cfg.SkipHeader {
		h.writeRunHeader(cfg)
	}
	if !cfg.SkipGit {
		h.writeGitInfo(cfg.App.RepoPath)
	}
	if !cfg.SkipCLIArgs {
		h.writeCommandLineArguments()
	}
	if !cfg.SkipVersion {
		h.writeRuntimeVersion()
	}
	if !cfg.SkipEnvironment {
		h.writeEnvironment()
	}
	if !cfg.SkipVariables && len(cfg.Variables) > 0 {
		h.writeVariables(cfg.Variables)
	}
	h.banner("LOGGING")
	return h.err
}

// headerWriter sequences section writes with a sticky first error.
type headerWriter struct {
	w        io.Writer
	wroteAny bool
	err      error
}

func (h *headerWriter) printf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, err := fmt.Fprintf(h.w, format, args...)
	h.err = errors.Wrap(err, "writing log header")
}

// banner writes "**************  TITLE  **************" with a blank line
// above (except for the very first section) and below.
func (h *headerWriter) banner(title string) {
	if h.wroteAny {
		h.printf("\n")
	}
	h.printf("%s  %s  %s\n\n", lateralSeparator, title, lateralSeparator)
	h.wroteAny = true
}

func (h *headerWriter) writeRunHeader(cfg Config) {
	title := cfg.HeaderTitle
	if title == "" {
		title = "LOG"
	}
	h.banner(title)
	h.printf("Analysis carried out: %s\n", time.Now().Format(filenameTimeLayout))
	h.printf("Output directory: %s\n", cfg.OutputDir)
	if wd, err := os.Getwd(); err == nil {
		h.printf("Current directory: %s\n", wd)
	}
	if cfg.App.Version != "" {
		h.printf("Version: %s\n", cfg.App.Version)
	}
}

func (h *headerWriter) writeGitInfo(repoPath string) {
	h.banner("GIT INFO")
	if repoPath == "" {
		repoPath = "."
	}
	info, err := resolveGit(repoPath)
	switch {
	case err == nil:
		h.printf("Commit hash: %s\n", info.Hash)
		h.printf("Commit message: %s\n", info.Message)
		h.printf("Commit date & time: %s\n", info.AuthoredAt)
		h.printf("Commit author: %s\n", info.AuthorName)
		h.printf("Commit author email: %s\n", info.AuthorEmail)
	case errors.Is(err, gitinfo.ErrGitUnavailable):
		h.printf("Git is not installed. Cannot check if software is in a git repository\n")
	case errors.Is(err, gitinfo.ErrNotARepository):
		h.printf("Software does not appear to be in a git repository. Perhaps it was installed in some other way?\n")
	default:
		if h.err == nil {
			h.err = errors.Wrap(err, "resolving git info")
		}
	}
}

func (h *headerWriter) writeCommandLineArguments() {
	h.banner("COMMAND LINE ARGUMENTS")
	h.printf("Command: %s\n", os.Args[0])
	h.printf("Input arguments: %v\n", os.Args[1:])
}

func (h *headerWriter) writeRuntimeVersion() {
	h.banner("VERSION")
	h.printf("Go version: %s\n", runtime.Version())
}

func (h *headerWriter) writeEnvironment() {
	h.banner("ENVIRONMENT")
	mods, err := listModules()
	if err != nil {
		// Listing failures are the collaborator's to signal, not ours to
		// suppress.
		if h.err == nil {
			h.err = errors.Wrap(err, "listing build dependencies")
		}
		return
	}
	local, global := buildinfo.Partition(mods)
	if len(local) > 0 {
		h.printf("local:\n")
		h.writeModuleTable(local)
		h.printf("\nglobal:\n")
		h.writeModuleTable(global)
		return
	}
	h.writeModuleTable(global)
}

func (h *headerWriter) writeModuleTable(mods []buildinfo.Module) {
	width := 0
	for _, m := range mods {
		if len(m.Path) > width {
			width = len(m.Path)
		}
	}
	for _, m := range mods {
		h.printf("%-*s  %s\n", width, m.Path, m.Version)
	}
}

func (h *headerWriter) writeVariables(vars []Describable) {
	h.banner("VARIABLES")
	for i, v := range vars {
		if i > 0 {
			h.printf("\n")
		}
		h.printf("%s:\n", v.TypeName())
		for _, f := range v.Fields() {
			// A field holding another member of the collection is dumped
			// under its own banner entry, not re-expanded here.
			if isCollectionMember(f.Value, vars) {
				continue
			}
			h.printf("%s: %v\n", f.Key, f.Value)
		}
	}
}

// isCollectionMember reports whether val is itself one of the Describables
// being dumped. Non-comparable implementations are never members.
func isCollectionMember(val any, vars []Describable) bool {
	d, ok := val.(Describable)
	if !ok {
		return false
	}
	if t := reflect.TypeOf(d); t == nil || !t.Comparable() {
		return false
	}
	for _, v := range vars {
		if t := reflect.TypeOf(v); t == nil || !t.Comparable() {
			continue
		}
		if v == d {
			return true
		}
	}
	return false
}
