package harness

import (
	"context"
	"fmt"

	"github.com/deixis/proctor/internal/report"
	"github.com/google/uuid"
)

// InstallOutcome holds the result of a dependency install run.
type InstallOutcome struct {
	Report   *report.RunResult
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Install downloads the module's declared dependencies into the
// per-user module cache. Safe to run repeatedly: a cache that is
// already current makes the download a no-op. A non-zero exit from the
// installer is propagated on the outcome, not synthesized into an error.
func (e *Engine) Install(ctx context.Context) (*InstallOutcome, error) {
	argv := []string{"go", "mod", "download"}
	argv = append(argv, e.Config.Install.Args...)

	result, err := e.Runner.Run(ctx, argv, "")
	if err != nil {
		return nil, fmt.Errorf("executing go mod download: %w", err)
	}

	rr := &report.RunResult{
		ID:       uuid.New().String(),
		Kind:     report.Install,
		ExitCode: result.ExitCode,
	}

	return &InstallOutcome{
		Report:   rr,
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
	}, nil
}
