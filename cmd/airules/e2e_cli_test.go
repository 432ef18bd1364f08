package airules

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/airules/airules/internal/report"
)

var (
	buildOnce sync.Once
	binPath   string
	buildErr  error
)

// cliBinary builds the airules binary once per test run.
func cliBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("subprocess test")
	}
	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "airules-e2e-")
		if err != nil {
			buildErr = err
			return
		}
		binPath = filepath.Join(dir, "airules")
		cmd := exec.Command("go", "build", "-o", binPath, ".")
		cmd.Dir = filepath.Clean(filepath.Join("..", ".."))
		cmd.Stderr = os.Stderr
		buildErr = cmd.Run()
	})
	if buildErr != nil {
		t.Fatalf("build: %v", buildErr)
	}
	return binPath
}

// runCLI runs the binary as a subprocess to observe os.Exit codes.
func runCLI(t *testing.T, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(cliBinary(t), args...)
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+t.TempDir())
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.String(), exitErr.ExitCode()
	}
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	return out.String(), 0
}

func TestCLI_GenerateJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"packageManager":"pnpm@9.1.0"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	out, code := runCLI(t, "generate", "--json", "--no-cache", "--enable", "package-manager", "-p", dir)
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	doc, err := report.ReadJSON(strings.NewReader(out))
	if err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	if len(doc.Rules) != 1 || doc.Rules[0].Text != "Use pnpm as the package manager." {
		t.Fatalf("unexpected rules: %+v", doc.Rules)
	}
	if len(doc.Groups) != 1 || doc.Groups[0].Title != "Package Manager" {
		t.Fatalf("unexpected groups: %+v", doc.Groups)
	}
}

func TestCLI_CheckExitCodes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"packageManager":"pnpm@9.1.0"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, code := runCLI(t, "generate", "--check", "-o", "AGENTS.md", "-p", dir); code != 1 {
		t.Fatalf("expected exit 1 for missing target, got %d", code)
	}
	if _, code := runCLI(t, "generate", "-o", "AGENTS.md", "-p", dir); code != 0 {
		t.Fatalf("generate exit %d", code)
	}
	if _, code := runCLI(t, "generate", "--check", "-o", "AGENTS.md", "-p", dir); code != 0 {
		t.Fatalf("expected exit 0 for fresh target, got %d", code)
	}
	if _, code := runCLI(t, "generate", "--mode", "bogus", "-p", dir); code != 2 {
		t.Fatalf("expected exit 2 for a usage error, got %d", code)
	}
}
