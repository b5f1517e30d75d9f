package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/deixis/proctor/internal/harness"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type installParams struct{}

func (h *handler) installHandler(ctx context.Context, req *mcp.CallToolRequest, _ installParams) (*mcp.CallToolResult, any, error) {
	out, err := h.engine.Install(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("install failed: %v", err))
	}

	_ = h.store.Save(out.Report)

	if out.ExitCode != 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "Status: FAIL (exit %d)\n", out.ExitCode)
		fmt.Fprintf(&b, "Run: %s\n\n", out.Report.ID)
		fmt.Fprint(&b, string(out.Stderr))
		return errorResult(b.String())
	}

	return textResult(fmt.Sprintf("Status: ok\nRun: %s\n\nDependencies are downloaded and current.\n", out.Report.ID))
}

type testParams struct {
	Packages []string `json:"packages,omitempty" jsonschema:"Go import paths of packages to test (e.g. example.com/foo/bar/...) or absolute directory paths. Defaults to all packages in the workspace."`
}

func (h *handler) testHandler(ctx context.Context, req *mcp.CallToolRequest, params testParams) (*mcp.CallToolResult, any, error) {
	out, err := h.engine.Test(ctx, params.Packages)
	if err != nil {
		return errorResult(fmt.Sprintf("test failed to start: %v", err))
	}

	// Save results for proctor_inspect.
	_ = h.store.Save(out.Report)

	return textResult(formatTest(out))
}

func formatTest(out *harness.TestOutcome) string {
	var b strings.Builder
	rr := out.Report

	if out.ExitCode == 0 {
		fmt.Fprintln(&b, "Status: PASS")
	} else {
		fmt.Fprintf(&b, "Status: FAIL (exit %d)\n", out.ExitCode)
	}
	fmt.Fprintf(&b, "Run: %s\n", rr.ID)
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Summary: %s\n", out.Summary)
	fmt.Fprintf(&b, "Executed: %d passed, %d failed, %d skipped\n", rr.PassedExecuted, rr.Failed, rr.Skipped)
	if rr.CoverageError != "" {
		fmt.Fprintf(&b, "Coverage: unavailable (%s)\n", rr.CoverageError)
	}
	fmt.Fprintln(&b)

	if out.ExitCode != 0 {
		detail := harness.FormatFailures(rr)
		if detail != "" {
			fmt.Fprintln(&b, "Failures:")
			fmt.Fprint(&b, detail)
			fmt.Fprintln(&b)
		}
		fmt.Fprintf(&b, "Inspect with proctor_inspect(run_id=%q, symbol=\"<package or package.Symbol>\").\n", rr.ID)
	} else {
		fmt.Fprintln(&b, "All tests passed.")
	}

	return b.String()
}
