// Command proctor is a local CI harness: it installs dependencies,
// runs the test suite under coverage, and reports a grader-parseable
// summary line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/deixis/proctor"
	"github.com/deixis/proctor/internal/config"
	"github.com/deixis/proctor/internal/harness"
	procmcp "github.com/deixis/proctor/internal/mcp"
	"github.com/deixis/proctor/internal/report"
	"github.com/deixis/proctor/internal/runner"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("proctor: ")

	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 1
	}

	cmd := args[0]
	rest := args[1:]

	switch cmd {
	case "install":
		return installMain(rest)
	case "test":
		return testMain(rest)
	case "mcp":
		if err := mcpMain(rest); err != nil {
			log.Print(err)
			return 1
		}
		return 0
	case "version":
		fmt.Println(proctor.Version)
		return 0
	case "help", "-h", "--help":
		usage()
		return 0
	}

	// Anything else must be an existing file to forward.
	if isRegularFile(cmd) {
		return invokeMain(cmd)
	}

	fmt.Fprintf(os.Stderr, "proctor: unknown command or missing file %q\n", cmd)
	usage()
	return 1
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: proctor <command|file> [flags]

Commands:
  install     Install declared dependencies (idempotent)
  test        Run the test suite with coverage and print the grader summary
  <file>      Forward an existing file path to the configured external program
  mcp         Start the MCP server
  version     Print the version
  help        Show this help

Use "proctor <command> -h" for command-specific flags.`)
}

// isRegularFile reports whether path names an existing regular file.
func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// --- install ---

func installMain(args []string) int {
	fs := flag.NewFlagSet("install", flag.ExitOnError)
	timeoutFlag := fs.Duration("timeout", 0, "override configured timeout (e.g. 5m)")
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng, err := newEngine(*timeoutFlag)
	if err != nil {
		log.Print(err)
		return 1
	}

	out, err := eng.Install(ctx)
	if err != nil {
		log.Printf("install: %v", err)
		return 1
	}

	_, _ = os.Stdout.Write(out.Stdout)
	_, _ = os.Stderr.Write(out.Stderr)
	return out.ExitCode
}

// --- test ---

func testMain(args []string) int {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	timeoutFlag := fs.Duration("timeout", 0, "override configured timeout (e.g. 5m)")
	_ = fs.Parse(args)

	packages := fs.Args()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng, err := newEngine(*timeoutFlag)
	if err != nil {
		log.Print(err)
		return 1
	}

	out, err := eng.Test(ctx, packages)
	if err != nil {
		// The runner never started; there is no result to summarise.
		log.Printf("test: %v", err)
		return 1
	}

	// A coverage load failure is a harness defect, distinct from a
	// failing suite. It goes to the log, never the summary line.
	if out.Report.CoverageError != "" {
		log.Printf("coverage: %s", out.Report.CoverageError)
	}

	fmt.Println(out.Summary)
	return out.ExitCode
}

// --- invoke ---

func invokeMain(path string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng, err := newEngine(0)
	if err != nil {
		log.Print(err)
		return 1
	}

	out, err := eng.Invoke(ctx, path)
	if err != nil {
		log.Print(err)
		return 1
	}

	_, _ = os.Stdout.Write(out.Stdout)
	_, _ = os.Stderr.Write(out.Stderr)
	return out.ExitCode
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(procmcp.Instructions)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return serve(ctx, *httpAddr)
}

func serve(ctx context.Context, httpAddr string) error {
	workspace, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining workspace: %w", err)
	}

	loaded, err := config.Load(workspace)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config

	disk := report.NewDiskStore()
	store := report.NewLRUStore(5, disk)

	r := &runner.Runner{
		Workspace: workspace,
		Timeout:   cfg.Timeout(),
		MaxOutput: cfg.MaxOutputBytes(),
	}

	server := procmcp.NewServer(cfg, r, store, workspace)

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- shared ---

func newEngine(timeoutOverride time.Duration) (*harness.Engine, error) {
	workspace, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining workspace: %w", err)
	}

	loaded, err := config.Load(workspace)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config

	timeout := cfg.Timeout()
	if timeoutOverride > 0 {
		timeout = timeoutOverride
	}

	r := &runner.Runner{
		Workspace: loaded.RepoRoot,
		Timeout:   timeout,
		MaxOutput: cfg.MaxOutputBytes(),
	}

	return &harness.Engine{
		Config:    cfg,
		Runner:    r,
		Workspace: workspace,
		RepoRoot:  loaded.RepoRoot,
	}, nil
}
