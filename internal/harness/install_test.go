package harness

import (
	"context"
	"testing"

	"github.com/deixis/proctor/internal/report"
	"github.com/deixis/proctor/internal/runner"
)

func TestInstall_Success(t *testing.T) {
	fr := &fakeRunner{}
	e := newTestEngine(fr, 0)
	e.Config.Install.Args = []string{"-x"}

	out, err := e.Install(context.Background())
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if out.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", out.ExitCode)
	}
	if out.Report.Kind != report.Install {
		t.Errorf("Kind = %s, want install", out.Report.Kind)
	}

	if len(fr.Calls) != 1 {
		t.Fatalf("Calls = %d, want 1", len(fr.Calls))
	}
	argv := fr.Calls[0]
	want := []string{"go", "mod", "download", "-x"}
	if len(argv) != len(want) {
		t.Fatalf("argv = %v, want %v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, argv[i], want[i])
		}
	}
}

func TestInstall_Idempotent(t *testing.T) {
	fr := &fakeRunner{}
	e := newTestEngine(fr, 0)

	for i := 0; i < 2; i++ {
		out, err := e.Install(context.Background())
		if err != nil {
			t.Fatalf("Install run %d: %v", i, err)
		}
		if out.ExitCode != 0 {
			t.Errorf("run %d: ExitCode = %d, want 0", i, out.ExitCode)
		}
	}
}

func TestInstall_PropagatesExitCode(t *testing.T) {
	fr := &fakeRunner{
		Results: map[string]*runner.Result{
			"go mod": {ExitCode: 1, Stderr: []byte("go: example.com/gone: not found\n")},
		},
	}
	e := newTestEngine(fr, 0)

	out, err := e.Install(context.Background())
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if out.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", out.ExitCode)
	}
	if len(out.Stderr) == 0 {
		t.Error("Stderr is empty, want installer output relayed")
	}
}
