// Package report provides structured persistence and retrieval of
// harness run results. Results are stored as typed structs and can be
// queried by package or symbol.
package report

import (
	"fmt"
	"strings"
)

// Kind identifies the type of a run.
type Kind string

const (
	// Install is a dependency install run.
	Install Kind = "install"
	// Test is a test-and-coverage run.
	Test Kind = "test"
	// Invoke is a single-input forwarding run.
	Invoke Kind = "invoke"
)

// Store persists and retrieves run results.
type Store interface {
	Save(result *RunResult) error
	Load(runID string) (*RunResult, error)
}

// RunResult holds the structured output from a harness run.
type RunResult struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	ExitCode int    `json:"exit_code"`

	// Test fields. TotalTests and PassedReported feed the grader summary
	// line; PassedExecuted/Failed/Skipped are the true dynamic counts from
	// the test runner, kept for drill-down only.
	TotalTests      int           `json:"total_tests,omitempty"`
	PassedReported  int           `json:"passed_reported,omitempty"`
	PassedExecuted  int           `json:"passed_executed,omitempty"`
	Failed          int           `json:"failed,omitempty"`
	Skipped         int           `json:"skipped,omitempty"`
	CoveragePercent int           `json:"coverage_percent,omitempty"`
	CoverageError   string        `json:"coverage_error,omitempty"`
	Summary         string        `json:"summary,omitempty"`
	TestFailures    []TestFailure `json:"test_failures,omitempty"`
	BuildErrors     []BuildError  `json:"build_errors,omitempty"`

	// Invoke fields.
	Target string `json:"target,omitempty"` // the forwarded file path
}

// Expect returns an error if the run's Kind does not match want.
func (r *RunResult) Expect(want Kind) error {
	if r.Kind != want {
		return fmt.Errorf("run %s is a %s run, not a %s run", r.ID, r.Kind, want)
	}
	return nil
}

// BuildError represents a compilation error.
type BuildError struct {
	Package string `json:"package"`
	Message string `json:"message"`
}

// TestFailure represents a failed test.
type TestFailure struct {
	Package string `json:"package"`
	Test    string `json:"test"`
	Message string `json:"message"`
	Output  string `json:"output,omitempty"`
}

// Diagnostic is a uniform interface for all diagnostic types.
type Diagnostic struct {
	Source  string // "test", "build", "coverage"
	Package string
	Symbol  string // e.g. "TestAdd" for test failures
	Message string
	Output  string // full test output (test failures only)
}

// ByPackage returns all diagnostics for a given package import path.
func ByPackage(result *RunResult, pkg string) []Diagnostic {
	var out []Diagnostic
	for _, d := range toDiagnostics(result) {
		if d.Package == pkg {
			out = append(out, d)
		}
	}
	return out
}

// BySymbol returns diagnostics matching a Go-qualified symbol.
// If sym contains a "." after the last "/" segment, it is treated as
// package.Symbol (e.g. "example.com/foo.TestAdd"). Otherwise it is
// treated as a bare package path and returns all diagnostics.
func BySymbol(result *RunResult, sym string) []Diagnostic {
	pkg, name := splitSymbol(sym)
	if name == "" {
		return ByPackage(result, pkg)
	}

	var out []Diagnostic
	for _, d := range toDiagnostics(result) {
		if d.Package == pkg && d.Symbol == name {
			out = append(out, d)
		}
	}
	return out
}

// splitSymbol splits a Go-qualified symbol into package path and symbol name.
// "example.com/foo.TestAdd" → ("example.com/foo", "TestAdd")
// "example.com/foo" → ("example.com/foo", "")
func splitSymbol(sym string) (string, string) {
	lastSlash := strings.LastIndex(sym, "/")
	afterSlash := sym[lastSlash+1:]
	dotIdx := strings.Index(afterSlash, ".")
	if dotIdx < 0 {
		return sym, ""
	}
	pkg := sym[:lastSlash+1+dotIdx]
	name := afterSlash[dotIdx+1:]
	return pkg, name
}

func toDiagnostics(r *RunResult) []Diagnostic {
	var out []Diagnostic

	for _, b := range r.BuildErrors {
		out = append(out, Diagnostic{
			Source:  "build",
			Package: b.Package,
			Message: b.Message,
		})
	}
	for _, t := range r.TestFailures {
		out = append(out, Diagnostic{
			Source:  "test",
			Package: t.Package,
			Symbol:  t.Test,
			Message: t.Message,
			Output:  t.Output,
		})
	}
	if r.CoverageError != "" {
		out = append(out, Diagnostic{
			Source:  "coverage",
			Message: r.CoverageError,
		})
	}

	return out
}
