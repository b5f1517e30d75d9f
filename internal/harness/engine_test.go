package harness

import (
	"testing"

	"github.com/deixis/proctor/internal/config"
)

func TestResolvePackages_Empty(t *testing.T) {
	e := &Engine{Workspace: "/project", RepoRoot: "/project"}
	got := e.ResolvePackages(nil)
	if len(got) != 1 || got[0] != "./..." {
		t.Errorf("ResolvePackages(nil) = %v, want [./...]", got)
	}
}

func TestResolvePackages_RelativePattern(t *testing.T) {
	e := &Engine{Workspace: "/project", RepoRoot: "/project"}
	got := e.ResolvePackages([]string{"./pkg/foo/..."})
	if len(got) != 1 || got[0] != "./pkg/foo/..." {
		t.Errorf("ResolvePackages(./pkg/foo/...) = %v, want [./pkg/foo/...]", got)
	}
}

func TestResolvePackages_ImportPath(t *testing.T) {
	e := &Engine{Workspace: "/project", RepoRoot: "/project"}
	got := e.ResolvePackages([]string{"example.com/foo/bar/..."})
	if len(got) != 1 || got[0] != "example.com/foo/bar/..." {
		t.Errorf("ResolvePackages(import path) = %v, want [example.com/foo/bar/...]", got)
	}
}

func TestResolvePackages_AbsoluteInsideRepoRoot(t *testing.T) {
	e := &Engine{Workspace: "/project/pkg/foo", RepoRoot: "/project"}
	got := e.ResolvePackages([]string{"/project/pkg/bar"})
	if len(got) != 1 || got[0] != "./pkg/bar/..." {
		t.Errorf("ResolvePackages(/project/pkg/bar) = %v, want [./pkg/bar/...]", got)
	}
}

func TestResolvePackages_AbsoluteOutsideRepoRoot(t *testing.T) {
	e := &Engine{Workspace: "/project", RepoRoot: "/project"}
	got := e.ResolvePackages([]string{"/other/project"})
	// Should be dropped, falling back to ./...
	if len(got) != 1 || got[0] != "./..." {
		t.Errorf("ResolvePackages(outside) = %v, want [./...]", got)
	}
}

func TestResolvePackages_Mixed(t *testing.T) {
	e := &Engine{Workspace: "/project/cmd", RepoRoot: "/project"}
	got := e.ResolvePackages([]string{
		"./...",
		"example.com/foo",
		"/project/pkg/bar",
		"/outside",
	})
	// Expect: ./..., example.com/foo, ./pkg/bar/...
	// /outside is dropped
	if len(got) != 3 {
		t.Fatalf("ResolvePackages(mixed) = %v, want 3 entries", got)
	}
	if got[0] != "./..." {
		t.Errorf("got[0] = %q, want ./...", got[0])
	}
	if got[1] != "example.com/foo" {
		t.Errorf("got[1] = %q, want example.com/foo", got[1])
	}
	if got[2] != "./pkg/bar/..." {
		t.Errorf("got[2] = %q, want ./pkg/bar/...", got[2])
	}
}

func TestTestRoot(t *testing.T) {
	e := &Engine{Config: &config.Config{}, Workspace: "/project", RepoRoot: "/project"}
	if got := e.testRoot(); got != "/project" {
		t.Errorf("testRoot() = %q, want /project", got)
	}

	e.Config.Test.Dir = "tests"
	if got := e.testRoot(); got != "/project/tests" {
		t.Errorf("testRoot() = %q, want /project/tests", got)
	}

	e.Config.Test.Dir = "/elsewhere/tests"
	if got := e.testRoot(); got != "/elsewhere/tests" {
		t.Errorf("testRoot() = %q, want /elsewhere/tests", got)
	}
}
