package harness

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/deixis/proctor/internal/config"
	"github.com/deixis/proctor/internal/runner"
)

// fakeRunner is a test double for CommandRunner. It returns predetermined
// results based on the first elements of argv and records every call.
type fakeRunner struct {
	Results map[string]*runner.Result
	Err     map[string]error
	Calls   [][]string

	// Profile is written to the path following -coverprofile on
	// "go test" calls, standing in for the real instrumentation.
	Profile string
}

func (f *fakeRunner) Run(_ context.Context, argv []string, _ string) (*runner.Result, error) {
	f.Calls = append(f.Calls, argv)
	key := fakeRunnerKey(argv)
	if key == "go test" && f.Profile != "" {
		for i, a := range argv {
			if a == "-coverprofile" && i+1 < len(argv) {
				writeFileRaw(argv[i+1], f.Profile)
			}
		}
	}
	if err, ok := f.Err[key]; ok {
		return nil, err
	}
	if r, ok := f.Results[key]; ok {
		return r, nil
	}
	// Default: success with no output.
	return &runner.Result{ExitCode: 0}, nil
}

// fakeRunnerKey builds a lookup key from argv.
// For "go test -json ./...", the key is "go test".
func fakeRunnerKey(argv []string) string {
	if len(argv) >= 2 && argv[0] == "go" {
		return "go " + argv[1]
	}
	if len(argv) > 0 {
		return argv[0]
	}
	return ""
}

func writeFileRaw(path, content string) {
	_ = os.WriteFile(path, []byte(content), 0o644)
}

// stubDiscoverer reports a fixed test count.
type stubDiscoverer int

func (d stubDiscoverer) Count(string) (int, error) { return int(d), nil }

func eventsJSON(t *testing.T, events []test2jsonEvent) []byte {
	t.Helper()
	var buf strings.Builder
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			t.Fatal(err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return []byte(buf.String())
}

func passingTestJSON(t *testing.T) []byte {
	return eventsJSON(t, []test2jsonEvent{
		{Action: "pass", Package: "example.com/foo", Test: "TestAdd"},
		{Action: "pass", Package: "example.com/foo", Test: "TestSub"},
	})
}

func failingTestJSON(t *testing.T) []byte {
	return eventsJSON(t, []test2jsonEvent{
		{Action: "pass", Package: "example.com/foo", Test: "TestAdd"},
		{Action: "output", Package: "example.com/foo", Test: "TestSub", Output: "expected 4, got 5\n"},
		{Action: "fail", Package: "example.com/foo", Test: "TestSub"},
	})
}

const halfCoveredProfile = `mode: set
example.com/foo/foo.go:3.14,5.2 2 1
example.com/foo/foo.go:7.2,9.10 2 0
`

func newTestEngine(fr *fakeRunner, total int) *Engine {
	return &Engine{
		Config:    &config.Config{},
		Runner:    fr,
		Workspace: "/project",
		RepoRoot:  "/project",
		Discovery: stubDiscoverer(total),
	}
}

func TestTest_AllPass(t *testing.T) {
	fr := &fakeRunner{
		Results: map[string]*runner.Result{
			"go test": {ExitCode: 0, Stdout: passingTestJSON(t)},
		},
		Profile: halfCoveredProfile,
	}
	e := newTestEngine(fr, 2)

	out, err := e.Test(context.Background(), nil)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if out.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", out.ExitCode)
	}
	if want := "2/2 test cases passed. 50% line coverage achieved."; out.Summary != want {
		t.Errorf("Summary = %q, want %q", out.Summary, want)
	}
	if out.Report.PassedExecuted != 2 || out.Report.Failed != 0 {
		t.Errorf("dynamic counts = %d passed, %d failed; want 2, 0", out.Report.PassedExecuted, out.Report.Failed)
	}
	if out.Report.CoverageError != "" {
		t.Errorf("CoverageError = %q, want empty", out.Report.CoverageError)
	}
}

func TestTest_FailureReportsZeroPassed(t *testing.T) {
	fr := &fakeRunner{
		Results: map[string]*runner.Result{
			"go test": {ExitCode: 1, Stdout: failingTestJSON(t)},
		},
		Profile: halfCoveredProfile,
	}
	e := newTestEngine(fr, 2)

	out, err := e.Test(context.Background(), nil)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if out.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", out.ExitCode)
	}
	// The documented approximation: one test actually passed, but the
	// summary reports zero on a failed run.
	if want := "0/2 test cases passed. 50% line coverage achieved."; out.Summary != want {
		t.Errorf("Summary = %q, want %q", out.Summary, want)
	}
	if out.Report.PassedExecuted != 1 {
		t.Errorf("PassedExecuted = %d, want 1", out.Report.PassedExecuted)
	}
	if len(out.Report.TestFailures) != 1 {
		t.Fatalf("TestFailures = %v, want one entry", out.Report.TestFailures)
	}
	f := out.Report.TestFailures[0]
	if f.Test != "TestSub" || f.Message != "expected 4, got 5" {
		t.Errorf("failure = %+v, want TestSub / 'expected 4, got 5'", f)
	}
}

func TestTest_CoverageLoadFailureIsBestEffort(t *testing.T) {
	// No profile is written: loading it is a harness defect, the
	// summary falls back to 0% and the exit code is untouched.
	fr := &fakeRunner{
		Results: map[string]*runner.Result{
			"go test": {ExitCode: 0, Stdout: passingTestJSON(t)},
		},
	}
	e := newTestEngine(fr, 2)

	out, err := e.Test(context.Background(), nil)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if out.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", out.ExitCode)
	}
	if want := "2/2 test cases passed. 0% line coverage achieved."; out.Summary != want {
		t.Errorf("Summary = %q, want %q", out.Summary, want)
	}
	if out.Report.CoverageError == "" {
		t.Error("CoverageError is empty, want a load failure recorded")
	}
}

func TestTest_RunnerExecFailure(t *testing.T) {
	fr := &fakeRunner{
		Err: map[string]error{
			"go test": errors.New("executing go: file does not exist"),
		},
	}
	e := newTestEngine(fr, 2)

	if _, err := e.Test(context.Background(), nil); err == nil {
		t.Fatal("expected error when the test runner cannot start")
	}
}

func TestTest_ArgvShape(t *testing.T) {
	fr := &fakeRunner{Profile: halfCoveredProfile}
	e := newTestEngine(fr, 0)
	e.Config.Test.Args = []string{"-count=1"}

	if _, err := e.Test(context.Background(), []string{"./pkg/..."}); err != nil {
		t.Fatalf("Test: %v", err)
	}
	if len(fr.Calls) != 1 {
		t.Fatalf("Calls = %d, want 1", len(fr.Calls))
	}
	argv := fr.Calls[0]
	joined := strings.Join(argv, " ")
	for _, want := range []string{"go test -json -failfast -coverprofile", "-count=1", "./pkg/..."} {
		if !strings.Contains(joined, want) {
			t.Errorf("argv %q missing %q", joined, want)
		}
	}
	if argv[len(argv)-1] != "./pkg/..." {
		t.Errorf("packages should come last, got %q", argv[len(argv)-1])
	}
}

func TestParseTestEvents_MalformedLinesSkipped(t *testing.T) {
	data := []byte("not json\n" + string(passingTestJSON(t)) + "{truncated\n")
	s := parseTestEvents(data)
	if s.Passed != 2 || s.Failed != 0 {
		t.Errorf("parse = %d passed, %d failed; want 2, 0", s.Passed, s.Failed)
	}
}

func TestParseTestEvents_BuildFailure(t *testing.T) {
	data := eventsJSON(t, []test2jsonEvent{
		{Action: "build-output", ImportPath: "example.com/foo", Output: "foo.go:3: undefined: frob\n"},
		{Action: "build-fail", ImportPath: "example.com/foo"},
	})
	s := parseTestEvents(data)
	if len(s.BuildErrors) != 1 {
		t.Fatalf("BuildErrors = %v, want one entry", s.BuildErrors)
	}
	be := s.BuildErrors[0]
	if be.Package != "example.com/foo" || !strings.Contains(be.Message, "undefined: frob") {
		t.Errorf("build error = %+v", be)
	}
}

func TestFirstLine(t *testing.T) {
	out := "=== RUN   TestSub\n--- FAIL: TestSub (0.00s)\n    foo_test.go:12: expected 4, got 5\n"
	if got := FirstLine(out); got != "foo_test.go:12: expected 4, got 5" {
		t.Errorf("FirstLine = %q", got)
	}
	if got := FirstLine(""); got != "" {
		t.Errorf("FirstLine(empty) = %q, want empty", got)
	}
}
