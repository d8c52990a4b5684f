package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/nick-dorsch/taskboard/internal/board"
)

// run executes the CLI in a fresh temp directory-backed project.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(args, &stdout, &stderr)
	return stdout.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("taskboard %s failed: %v", strings.Join(args, " "), err)
	}
	return out
}

// addedID extracts the id from "✓ Added <id> "<title>"".
func addedID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	if len(fields) < 3 || fields[1] != "Added" {
		t.Fatalf("unexpected add output: %q", out)
	}
	return fields[2]
}

func TestExecuteUnknownCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, "-ephemeral", "work")
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command: work") {
		t.Fatalf("expected unknown command error, got: %v", err)
	}
}

func TestExecuteHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := execute([]string{"--help"}, &stdout, &stderr)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected help error, got: %v", err)
	}

	output := stderr.String()
	for _, want := range []string{"Commands:", "migrate", "-backend", "-db-path", "-ephemeral"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in help output, got: %s", want, output)
		}
	}
}

func TestExecuteRejectsBadConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := run(t, "-backend", "mongo", "list"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestExecuteNoCommandRunsMenu(t *testing.T) {
	t.Chdir(t.TempDir())

	original := runMenu
	t.Cleanup(func() { runMenu = original })

	runMenu = func() (string, error) { return "", nil }
	if out := mustRun(t, "-ephemeral"); out != "" {
		t.Errorf("expected no output after quitting the menu, got %q", out)
	}

	runMenu = func() (string, error) { return "status", nil }
	if out := mustRun(t, "-ephemeral"); !strings.Contains(out, "Taskboard Status") {
		t.Errorf("expected menu selection to run status, got %q", out)
	}
}

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	out := mustRun(t, "init")
	if !strings.Contains(out, "Taskboard initialized successfully") {
		t.Errorf("unexpected init output: %s", out)
	}

	dir := filepath.Join(tmpDir, ".taskboard")
	content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatalf("failed to read .gitignore: %v", err)
	}
	if !strings.Contains(string(content), "*.db*") {
		t.Errorf(".gitignore content mismatch, got %q", string(content))
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("config file was not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "taskboard.db")); err != nil {
		t.Errorf("database file was not created: %v", err)
	}

	// A second init keeps the existing config.
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[http]\naddr = \":1234\"\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	mustRun(t, "init")
	data, _ := os.ReadFile(filepath.Join(dir, "config.toml"))
	if !strings.Contains(string(data), ":1234") {
		t.Errorf("init overwrote the existing config: %s", data)
	}
}

func TestInitWithFileBackend(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	mustRun(t, "-backend", "file", "init")
	data, err := os.ReadFile(filepath.Join(tmpDir, ".taskboard", "config.toml"))
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if !strings.Contains(string(data), `backend = "file"`) {
		t.Errorf("expected the chosen backend in config, got %s", data)
	}
}

func TestBoardAndMCPCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	mustRun(t, "-backend", "file", "add", "seed")

	originalBoard, originalMCP := runBoardTUI, serveMCP
	t.Cleanup(func() {
		runBoardTUI = originalBoard
		serveMCP = originalMCP
	})

	var boardTasks int
	runBoardTUI = func(ctx context.Context, ctrl *board.Controller) error {
		boardTasks = len(ctrl.Tasks())
		return nil
	}
	mustRun(t, "-backend", "file", "board")
	if boardTasks != 1 {
		t.Errorf("expected the board to open loaded, got %d tasks", boardTasks)
	}

	served := false
	serveMCP = func(s *server.MCPServer) error {
		served = s.GetTool("add_task") != nil
		return nil
	}
	mustRun(t, "-backend", "file", "mcp")
	if !served {
		t.Error("expected mcp to serve the board tools")
	}
}

func TestDisplayAddr(t *testing.T) {
	tests := map[string]string{
		":8000":          ":8000",
		"127.0.0.1:9000": ":9000",
		"8080":           ":8080",
	}
	for in, want := range tests {
		if got := displayAddr(in); got != want {
			t.Errorf("displayAddr(%q) = %q, want %q", in, got, want)
		}
	}
}
