package harness

import (
	"context"
	"fmt"

	"github.com/deixis/proctor/internal/report"
	"github.com/google/uuid"
)

// InvokeOutcome holds the result of forwarding a file to the external program.
type InvokeOutcome struct {
	Report   *report.RunResult
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Invoke forwards path unchanged as the final argument of the
// configured external program and returns that program's exit code
// verbatim. The file's contents are never inspected here; that
// responsibility belongs entirely to the external program.
func (e *Engine) Invoke(ctx context.Context, path string) (*InvokeOutcome, error) {
	cmd := e.Config.Invoke.Command
	if len(cmd) == 0 {
		return nil, fmt.Errorf("invoke: no command configured (set invoke.command in .proctor)")
	}

	argv := make([]string, 0, len(cmd)+1)
	argv = append(argv, cmd...)
	argv = append(argv, path)

	result, err := e.Runner.Run(ctx, argv, "")
	if err != nil {
		return nil, fmt.Errorf("executing %s: %w", cmd[0], err)
	}

	rr := &report.RunResult{
		ID:       uuid.New().String(),
		Kind:     report.Invoke,
		ExitCode: result.ExitCode,
		Target:   path,
	}

	return &InvokeOutcome{
		Report:   rr,
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
	}, nil
}
