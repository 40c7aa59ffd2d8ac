package logbook

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/logbook/internal/buildinfo"
	"github.com/thoreinstein/logbook/internal/gitinfo"
)

// stubCollaborators pins git and build-info resolution for the duration of
// one test.
func stubCollaborators(t *testing.T, git func(string) (gitinfo.Info, error), mods func() ([]buildinfo.Module, error)) {
	t.Helper()
	origGit, origMods := resolveGit, listModules
	t.Cleanup(func() {
		resolveGit, listModules = origGit, origMods
	})
	if git != nil {
		resolveGit = git
	}
	if mods != nil {
		listModules = mods
	}
}

func stubGitInfo(info gitinfo.Info, err error) func(string) (gitinfo.Info, error) {
	return func(string) (gitinfo.Info, error) { return info, err }
}

func stubModules(mods []buildinfo.Module, err error) func() ([]buildinfo.Module, error) {
	return func() ([]buildinfo.Module, error) { return mods, err }
}

func writeTestHeader(t *testing.T, cfg Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "header.log")
	if err := writeHeader(path, cfg); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	return readLog(t, path)
}

func TestWriteHeader_SectionOrder(t *testing.T) {
	stubCollaborators(t,
		stubGitInfo(gitinfo.Info{
			Hash:        "abc123",
			Message:     "initial commit",
			AuthorName:  "Dev",
			AuthorEmail: "dev@example.com",
			AuthoredAt:  "Date: 2026-01-02, Time: 10-11-12",
		}, nil),
		stubModules([]buildinfo.Module{
			{Path: "github.com/acme/app", Version: "v1.2.3"},
		}, nil),
	)

	content := writeTestHeader(t, Config{OutputDir: "/tmp/out"})

	wantOrder := []string{
		"**************  LOG  **************",
		"**************  GIT INFO  **************",
		"**************  COMMAND LINE ARGUMENTS  **************",
		"**************  VERSION  **************",
		"**************  ENVIRONMENT  **************",
		"**************  LOGGING  **************",
	}
	last := -1
	for _, banner := range wantOrder {
		idx := strings.Index(content, banner)
		if idx < 0 {
			t.Fatalf("header missing banner %q:\n%s", banner, content)
		}
		if idx < last {
			t.Errorf("banner %q out of order:\n%s", banner, content)
		}
		last = idx
	}
}

func TestWriteHeader_RunSection(t *testing.T) {
	stubCollaborators(t, stubGitInfo(gitinfo.Info{}, gitinfo.ErrNotARepository), stubModules(nil, nil))

	content := writeTestHeader(t, Config{
		OutputDir: "/data/results",
		App:       App{Name: "pipeline", Version: "2.4.0"},
	})

	if !strings.Contains(content, "Analysis carried out: ") {
		t.Errorf("header missing run timestamp:\n%s", content)
	}
	if !strings.Contains(content, "Output directory: /data/results") {
		t.Errorf("header missing output directory:\n%s", content)
	}
	if !strings.Contains(content, "Current directory: ") {
		t.Errorf("header missing working directory:\n%s", content)
	}
	if !strings.Contains(content, "Version: 2.4.0") {
		t.Errorf("header missing app version:\n%s", content)
	}
}

func TestWriteHeader_CustomTitle(t *testing.T) {
	stubCollaborators(t, stubGitInfo(gitinfo.Info{}, gitinfo.ErrNotARepository), stubModules(nil, nil))

	content := writeTestHeader(t, Config{
		OutputDir:   "/tmp/out",
		HeaderTitle: "TRAINING RUN",
	})

	if !strings.Contains(content, "**************  TRAINING RUN  **************") {
		t.Errorf("header missing custom title banner:\n%s", content)
	}
	if strings.Contains(content, "**************  LOG  **************") {
		t.Errorf("custom title should replace the LOG banner:\n%s", content)
	}
}

func TestWriteHeader_GitSection(t *testing.T) {
	tests := []struct {
		name string
		git  func(string) (gitinfo.Info, error)
		want string
	}{
		{
			name: "resolved commit",
			git: stubGitInfo(gitinfo.Info{
				Hash:        "deadbeef",
				Message:     "fix the thing",
				AuthorName:  "Dev",
				AuthorEmail: "dev@example.com",
				AuthoredAt:  "Date: 2026-01-02, Time: 10-11-12",
			}, nil),
			want: "Commit hash: deadbeef",
		},
		{
			name: "git missing",
			git:  stubGitInfo(gitinfo.Info{}, gitinfo.ErrGitUnavailable),
			want: "Git is not installed. Cannot check if software is in a git repository",
		},
		{
			name: "not a repository",
			git:  stubGitInfo(gitinfo.Info{}, gitinfo.ErrNotARepository),
			want: "Software does not appear to be in a git repository. Perhaps it was installed in some other way?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubCollaborators(t, tt.git, stubModules(nil, nil))

			content := writeTestHeader(t, Config{OutputDir: "/tmp/out"})
			if !strings.Contains(content, tt.want) {
				t.Errorf("git section missing %q:\n%s", tt.want, content)
			}
		})
	}
}

func TestWriteHeader_GitFailure(t *testing.T) {
	stubCollaborators(t, stubGitInfo(gitinfo.Info{}, errors.New("git exploded")), stubModules(nil, nil))

	path := filepath.Join(t.TempDir(), "header.log")
	err := writeHeader(path, Config{OutputDir: "/tmp/out"})
	if err == nil {
		t.Fatal("unexpected git failures must surface")
	}
	if !strings.Contains(err.Error(), "git exploded") {
		t.Errorf("error should carry the cause: %v", err)
	}
}

func TestWriteHeader_EnvironmentSection(t *testing.T) {
	stubCollaborators(t,
		stubGitInfo(gitinfo.Info{}, gitinfo.ErrNotARepository),
		stubModules([]buildinfo.Module{
			{Path: "github.com/acme/app", Version: "v1.0.0"},
			{Path: "github.com/acme/lib", Version: "v0.3.1", Replaced: true},
			{Path: "gopkg.in/yaml.v3", Version: "v3.0.1"},
		}, nil),
	)

	content := writeTestHeader(t, Config{OutputDir: "/tmp/out"})

	if !strings.Contains(content, "local:") {
		t.Errorf("environment section missing local group:\n%s", content)
	}
	if !strings.Contains(content, "global:") {
		t.Errorf("environment section missing global group:\n%s", content)
	}
	if !strings.Contains(content, "github.com/acme/lib") {
		t.Errorf("environment section missing replaced module:\n%s", content)
	}
	if !strings.Contains(content, "gopkg.in/yaml.v3") {
		t.Errorf("environment section missing module:\n%s", content)
	}
}

func TestWriteHeader_EnvironmentNoReplacedModules(t *testing.T) {
	stubCollaborators(t,
		stubGitInfo(gitinfo.Info{}, gitinfo.ErrNotARepository),
		stubModules([]buildinfo.Module{
			{Path: "github.com/acme/app", Version: "v1.0.0"},
		}, nil),
	)

	content := writeTestHeader(t, Config{OutputDir: "/tmp/out"})

	if strings.Contains(content, "local:") {
		t.Errorf("no local group expected without replaced modules:\n%s", content)
	}
	if !strings.Contains(content, "github.com/acme/app") {
		t.Errorf("environment section missing module:\n%s", content)
	}
}

func TestWriteHeader_SkipToggles(t *testing.T) {
	stubCollaborators(t,
		stubGitInfo(gitinfo.Info{Hash: "abc"}, nil),
		stubModules([]buildinfo.Module{{Path: "m", Version: "v1"}}, nil),
	)

	content := writeTestHeader(t, Config{
		OutputDir:       "/tmp/out",
		SkipHeader:      true,
		SkipGit:         true,
		SkipCLIArgs:     true,
		SkipVersion:     true,
		SkipEnvironment: true,
	})

	for _, banner := range []string{"LOG", "GIT INFO", "COMMAND LINE ARGUMENTS", "VERSION", "ENVIRONMENT"} {
		if strings.Contains(content, "  "+banner+"  ") {
			t.Errorf("skipped section %q still present:\n%s", banner, content)
		}
	}
	// The LOGGING banner always terminates the header.
	if !strings.Contains(content, "**************  LOGGING  **************") {
		t.Errorf("header missing terminal LOGGING banner:\n%s", content)
	}
}

func TestWriteHeader_RuntimeVersionSection(t *testing.T) {
	stubCollaborators(t, stubGitInfo(gitinfo.Info{}, gitinfo.ErrNotARepository), stubModules(nil, nil))

	content := writeTestHeader(t, Config{OutputDir: "/tmp/out"})
	if !strings.Contains(content, "Go version: go") {
		t.Errorf("version section missing runtime version:\n%s", content)
	}
}

type describedConfig struct {
	name   string
	fields []Field
}

func (d *describedConfig) TypeName() string { return d.name }
func (d *describedConfig) Fields() []Field  { return d.fields }

func TestWriteHeader_VariablesSection(t *testing.T) {
	stubCollaborators(t, stubGitInfo(gitinfo.Info{}, gitinfo.ErrNotARepository), stubModules(nil, nil))

	training := &describedConfig{
		name: "TrainingConfig",
		fields: []Field{
			{Key: "epochs", Value: 10},
			{Key: "rate", Value: 0.001},
		},
	}
	content := writeTestHeader(t, Config{
		OutputDir: "/tmp/out",
		Variables: []Describable{training},
	})

	if !strings.Contains(content, "**************  VARIABLES  **************") {
		t.Errorf("header missing variables banner:\n%s", content)
	}
	if !strings.Contains(content, "TrainingConfig:") {
		t.Errorf("variables section missing type name:\n%s", content)
	}
	if !strings.Contains(content, "epochs: 10") {
		t.Errorf("variables section missing field:\n%s", content)
	}
	if !strings.Contains(content, "rate: 0.001") {
		t.Errorf("variables section missing field:\n%s", content)
	}
}

func TestWriteHeader_VariablesSkipCollectionMembers(t *testing.T) {
	stubCollaborators(t, stubGitInfo(gitinfo.Info{}, gitinfo.ErrNotARepository), stubModules(nil, nil))

	inner := &describedConfig{
		name:   "Optimizer",
		fields: []Field{{Key: "kind", Value: "adam"}},
	}
	outer := &describedConfig{
		name: "Model",
		fields: []Field{
			{Key: "layers", Value: 4},
			{Key: "optimizer", Value: inner},
		},
	}
	content := writeTestHeader(t, Config{
		OutputDir: "/tmp/out",
		Variables: []Describable{outer, inner},
	})

	// inner appears under its own banner entry, not inline in outer.
	if !strings.Contains(content, "Optimizer:") {
		t.Errorf("variables section missing second entry:\n%s", content)
	}
	if strings.Contains(content, "optimizer: ") {
		t.Errorf("collection members must not be re-expanded inline:\n%s", content)
	}
	if !strings.Contains(content, "layers: 4") {
		t.Errorf("variables section missing plain field:\n%s", content)
	}
}

func TestWriteHeader_NoVariablesNoBanner(t *testing.T) {
	stubCollaborators(t, stubGitInfo(gitinfo.Info{}, gitinfo.ErrNotARepository), stubModules(nil, nil))

	content := writeTestHeader(t, Config{OutputDir: "/tmp/out"})
	if strings.Contains(content, "VARIABLES") {
		t.Errorf("variables banner should be absent without variables:\n%s", content)
	}
}

func TestIsCollectionMember(t *testing.T) {
	a := &describedConfig{name: "A"}
	b := &describedConfig{name: "B"}
	vars := []Describable{a, b}

	if !isCollectionMember(a, vars) {
		t.Error("a member should be detected")
	}
	if isCollectionMember(&describedConfig{name: "A"}, vars) {
		t.Error("a distinct value should not be a member")
	}
	if isCollectionMember("not describable", vars) {
		t.Error("non-Describable values are never members")
	}
}
