// Package harness provides the core execution engine for proctor's
// install, test, and invoke operations. It is consumed by both the
// MCP server and the CLI commands.
package harness

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/deixis/proctor/internal/config"
	"github.com/deixis/proctor/internal/runner"
)

// CommandRunner executes commands within a workspace.
// Implemented by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, cwd string) (*runner.Result, error)
}

// Engine holds shared dependencies for all harness operations.
type Engine struct {
	Config    *config.Config
	Runner    CommandRunner
	Workspace string // cwd — commands run from here, ./... scopes to here
	RepoRoot  string // module root — used for absolute-path resolution

	// Discovery counts test declarations for the summary line.
	// Defaults to StaticScanner when nil.
	Discovery Discoverer
}

func (e *Engine) discoverer() Discoverer {
	if e.Discovery != nil {
		return e.Discovery
	}
	return StaticScanner{}
}

// testRoot returns the directory scanned for test declarations:
// the configured test.dir (resolved against the repo root), or the
// repo root itself.
func (e *Engine) testRoot() string {
	base := e.RepoRoot
	if base == "" {
		base = e.Workspace
	}
	dir := e.Config.Test.Dir
	if dir == "" {
		return base
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(base, dir)
}

// ResolvePackages normalises package arguments so that tools work
// identically regardless of how packages are specified. It accepts
// three input styles:
//
//   - Go import paths (e.g. "example.com/foo/bar/...") — passed through.
//   - Absolute directory paths (e.g. "/home/user/proj/bar") — converted
//     to a "./…" pattern relative to the repo root.
//   - Relative patterns (e.g. "./bar/...") — passed through unchanged.
//
// When the list is empty it defaults to "./..." (all packages in the
// workspace), matching the behaviour of `go test ./...`.
func (e *Engine) ResolvePackages(packages []string) []string {
	if len(packages) == 0 {
		return []string{"./..."}
	}

	resolved := make([]string, 0, len(packages))
	for _, p := range packages {
		if filepath.IsAbs(p) {
			// Convert absolute directory path to a repo-root-relative
			// pattern, so that paths anywhere in the module resolve
			// correctly regardless of cwd.
			base := e.RepoRoot
			if base == "" {
				base = e.Workspace
			}
			rel, err := filepath.Rel(base, p)
			if err != nil || strings.HasPrefix(rel, "..") {
				// Outside repo root — skip silently.
				continue
			}
			pattern := "./" + rel
			if !strings.HasSuffix(pattern, "...") {
				pattern += "/..."
			}
			resolved = append(resolved, pattern)
		} else {
			// Import path or relative pattern — pass through.
			resolved = append(resolved, p)
		}
	}

	if len(resolved) == 0 {
		return []string{"./..."}
	}
	return resolved
}
