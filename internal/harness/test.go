package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/deixis/proctor/internal/report"
	"github.com/google/uuid"
)

// TestOutcome holds the full result of a test-and-coverage run.
type TestOutcome struct {
	Report   *report.RunResult
	Summary  string // the grader line, always populated
	ExitCode int    // the test subprocess's exit code
}

// Test runs the suite fail-fast under coverage instrumentation and
// derives the grader summary. The summary's passed count is the static
// discovery total when the suite exited 0, and 0 otherwise. It does
// not reflect partial pass counts; the true dynamic counts are kept on
// the report for drill-down.
//
// An error is returned only when the test runner could not be started
// at all; a suite that ran and failed yields a TestOutcome with a
// non-zero ExitCode.
func (e *Engine) Test(ctx context.Context, packages []string) (*TestOutcome, error) {
	runID := uuid.New().String()
	pkgs := e.ResolvePackages(packages)

	// Static discovery runs regardless of how the suite fares.
	total, err := e.discoverer().Count(e.testRoot())
	if err != nil {
		total = 0
	}

	f, err := os.CreateTemp("", "proctor-cover-*.out")
	if err != nil {
		return nil, fmt.Errorf("creating cover profile: %w", err)
	}
	coverFile := f.Name()
	_ = f.Close()
	defer func() { _ = os.Remove(coverFile) }()

	argv := []string{"go", "test", "-json", "-failfast", "-coverprofile", coverFile}
	argv = append(argv, e.Config.Test.Args...)
	argv = append(argv, pkgs...)

	result, err := e.Runner.Run(ctx, argv, "")
	if err != nil {
		return nil, fmt.Errorf("executing go test: %w", err)
	}
	rc := result.ExitCode

	suite := parseTestEvents(result.Stdout)

	rr := &report.RunResult{
		ID:             runID,
		Kind:           report.Test,
		ExitCode:       rc,
		TotalTests:     total,
		PassedExecuted: suite.Passed,
		Failed:         suite.Failed,
		Skipped:        suite.Skipped,
		TestFailures:   suite.Failures,
		BuildErrors:    suite.BuildErrors,
	}

	coverage, covErr := LineCoverage(coverFile)
	if covErr != nil {
		rr.CoverageError = covErr.Error()
		coverage = 0
	}
	rr.CoveragePercent = coverage

	passed := 0
	if rc == 0 {
		passed = total
	}
	rr.PassedReported = passed
	rr.Summary = FormatSummary(passed, total, coverage)

	return &TestOutcome{
		Report:   rr,
		Summary:  rr.Summary,
		ExitCode: rc,
	}, nil
}

// SuiteSummary holds the dynamic results parsed from go test -json.
type SuiteSummary struct {
	Passed      int
	Failed      int
	Skipped     int
	Failures    []report.TestFailure
	BuildErrors []report.BuildError
}

// test2jsonEvent represents a single event from `go test -json`.
type test2jsonEvent struct {
	Action     string  `json:"Action"`
	Package    string  `json:"Package"`
	Test       string  `json:"Test"`
	Output     string  `json:"Output"`
	Elapsed    float64 `json:"Elapsed"`
	ImportPath string  `json:"ImportPath"`
}

func parseTestEvents(data []byte) *SuiteSummary {
	s := &SuiteSummary{}

	type testKey struct{ pkg, test string }
	outputs := make(map[testKey]*strings.Builder)
	failedTests := make(map[testKey]bool)

	buildOutputs := make(map[string]*strings.Builder)
	failedBuilds := make(map[string]bool)

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var ev test2jsonEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}

		key := testKey{ev.Package, ev.Test}

		switch ev.Action {
		case "output":
			if ev.Test != "" {
				if _, ok := outputs[key]; !ok {
					outputs[key] = &strings.Builder{}
				}
				outputs[key].WriteString(ev.Output)
			}
		case "pass":
			if ev.Test != "" {
				s.Passed++
			}
		case "fail":
			if ev.Test != "" {
				s.Failed++
				failedTests[key] = true
			}
		case "skip":
			if ev.Test != "" {
				s.Skipped++
			}
		case "build-output":
			ip := ev.ImportPath
			if ip == "" {
				ip = ev.Package
			}
			if ip != "" {
				if _, ok := buildOutputs[ip]; !ok {
					buildOutputs[ip] = &strings.Builder{}
				}
				buildOutputs[ip].WriteString(ev.Output)
			}
		case "build-fail":
			ip := ev.ImportPath
			if ip == "" {
				ip = ev.Package
			}
			if ip != "" {
				failedBuilds[ip] = true
			}
		}
	}

	for key := range failedTests {
		output := ""
		if b, ok := outputs[key]; ok {
			output = b.String()
		}
		s.Failures = append(s.Failures, report.TestFailure{
			Test:    key.test,
			Package: key.pkg,
			Message: FirstLine(output),
			Output:  output,
		})
	}

	for ip := range failedBuilds {
		output := ""
		if b, ok := buildOutputs[ip]; ok {
			output = strings.TrimRight(b.String(), "\n")
		}
		s.BuildErrors = append(s.BuildErrors, report.BuildError{
			Package: ip,
			Message: output,
		})
	}

	return s
}

// FirstLine returns the first non-empty line of s, trimmed,
// skipping test framework boilerplate lines.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "=== RUN") && !strings.HasPrefix(line, "--- FAIL") {
			return line
		}
	}
	return ""
}

// FormatFailures renders the dynamic failure detail for human or MCP
// consumption. It is never part of the grader summary line.
func FormatFailures(rr *report.RunResult) string {
	var b strings.Builder

	if len(rr.BuildErrors) > 0 {
		fmt.Fprintln(&b, "Build errors:")
		for _, be := range rr.BuildErrors {
			fmt.Fprintf(&b, "  %s:\n", be.Package)
			for _, line := range strings.Split(truncateLines(be.Message, maxFailureLines), "\n") {
				fmt.Fprintf(&b, "    %s\n", line)
			}
		}
	}

	for _, f := range rr.TestFailures {
		msg := f.Message
		if msg == "" {
			msg = "test failed"
		}
		fmt.Fprintf(&b, "  %s.%s — %s\n", f.Package, f.Test, msg)
	}

	return b.String()
}

// maxFailureLines is the maximum number of output lines shown per build failure.
const maxFailureLines = 20

func truncateLines(s string, maxLines int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}
	result := strings.Join(lines[:maxLines], "\n")
	result += fmt.Sprintf("\n... (%d more lines)", len(lines)-maxLines)
	return result
}
