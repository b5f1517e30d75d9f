// Package mcp provides the proctor MCP server, registering all tools
// and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"net/url"
	"time"

	"github.com/deixis/proctor"
	"github.com/deixis/proctor/internal/config"
	"github.com/deixis/proctor/internal/harness"
	"github.com/deixis/proctor/internal/report"
	"github.com/deixis/proctor/internal/runner"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	engine *harness.Engine
	runner *runner.Runner // retained for updateWorkspaceFromRoots
	store  report.Store
}

// NewServer creates an MCP server with all proctor tools registered.
func NewServer(cfg *config.Config, r *runner.Runner, store report.Store, workspace string) *mcp.Server {
	h := &handler{
		engine: &harness.Engine{
			Config:    cfg,
			Runner:    r,
			Workspace: workspace,
			RepoRoot:  workspace, // MCP defaults to workspace; updated via roots
		},
		runner: r,
		store:  store,
	}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.updateWorkspaceFromRoots(ctx, req.Session)
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "proctor", Version: proctor.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "proctor_workspace",
		Description: "Summarise the Go workspace: module path, Go version, and package list.",
	}, h.workspaceHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "proctor_install",
		Description: `Install the module's declared dependencies into the per-user cache.

Idempotent: safe to call repeatedly. Returns the installer's exit status.`,
	}, h.installHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "proctor_test",
		Description: `Run the test suite fail-fast under coverage instrumentation.

Returns the grader summary line ("<passed>/<total> test cases passed. <coverage>% line coverage achieved.")
plus structured detail. Results are stored for drill-down via proctor_inspect.`,
	}, h.testHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "proctor_inspect",
		Description: `Drill into results from a proctor_test run.

Use the run_id and a Go-qualified symbol from the tool output.
Symbol can be an import path (e.g. example.com/foo) for all diagnostics in a package,
or importpath.Symbol (e.g. example.com/foo.TestAdd) for a specific test.`,
	}, h.inspectHandler)

	return s
}

// updateWorkspaceFromRoots queries the client for MCP roots and updates the
// handler's engine, runner, and config if a valid root is returned.
// This is called during session initialization, before any tool calls.
func (h *handler) updateWorkspaceFromRoots(ctx context.Context, session *mcp.ServerSession) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	roots, err := session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil {
		return
	}
	if len(roots.Roots) == 0 {
		return
	}

	u, err := url.Parse(roots.Roots[0].URI)
	if err != nil || u.Scheme != "file" {
		return
	}
	workspace := u.Path

	loaded, err := config.Load(workspace)
	if err != nil {
		return
	}

	// Update runner.
	h.runner.Workspace = workspace
	h.runner.Timeout = loaded.Config.Timeout()
	h.runner.MaxOutput = loaded.Config.MaxOutputBytes()

	// Update engine.
	h.engine.Config = loaded.Config
	h.engine.Workspace = workspace
	h.engine.RepoRoot = loaded.RepoRoot
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
