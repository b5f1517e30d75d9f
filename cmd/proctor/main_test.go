package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRun_NoArguments(t *testing.T) {
	if got := run(nil); got != 1 {
		t.Errorf("run() = %d, want 1", got)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	if got := run([]string{"frobnicate"}); got != 1 {
		t.Errorf("run(frobnicate) = %d, want 1", got)
	}
}

func TestRun_NonexistentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.txt")
	if got := run([]string{path}); got != 1 {
		t.Errorf("run(%s) = %d, want 1", path, got)
	}
}

func TestRun_DirectoryIsNotAFile(t *testing.T) {
	// A directory path is not a forwardable file.
	if got := run([]string{t.TempDir()}); got != 1 {
		t.Errorf("run(dir) = %d, want 1", got)
	}
}

func TestRun_Version(t *testing.T) {
	if got := run([]string{"version"}); got != 0 {
		t.Errorf("run(version) = %d, want 0", got)
	}
}

func TestRun_Help(t *testing.T) {
	if got := run([]string{"help"}); got != 0 {
		t.Errorf("run(help) = %d, want 0", got)
	}
}

func TestRun_FileForwardsToConfiguredCommand(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("go.mod", "module example.com/fixture\n\ngo 1.21\n")
	write(".proctor", "version: 1\ninvoke:\n  command: [\"/bin/sh\", \"-c\", \"exit 42\"]\n")
	write("urls.txt", "https://example.com\n")

	t.Chdir(dir)

	// The external program's exit code comes back verbatim.
	if got := run([]string{filepath.Join(dir, "urls.txt")}); got != 42 {
		t.Errorf("run(urls.txt) = %d, want 42", got)
	}
}
