package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	start = "<!-- s -->"
	end   = "<!-- e -->"
)

func TestWriteFileAtomic_CreatesAndPreservesMode(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sub", "AGENTS.md")
	if err := WriteFileAtomic(p, []byte("one"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	st, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected mode %v", st.Mode().Perm())
	}

	if err := WriteFileAtomic(p, []byte("two"), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, _ := os.ReadFile(p)
	if string(b) != "two" {
		t.Fatalf("unexpected content: %q", b)
	}
	st, _ = os.Stat(p)
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("mode not preserved: %v", st.Mode().Perm())
	}

	entries, _ := os.ReadDir(filepath.Dir(p))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestEnsureMarkers(t *testing.T) {
	dir := t.TempDir()

	fresh := filepath.Join(dir, "fresh.md")
	changed, err := EnsureMarkers(fresh, start, end)
	if err != nil || !changed {
		t.Fatalf("EnsureMarkers fresh: changed=%v err=%v", changed, err)
	}
	b, _ := os.ReadFile(fresh)
	if string(b) != start+"\n"+end+"\n" {
		t.Fatalf("unexpected content: %q", b)
	}

	existing := filepath.Join(dir, "existing.md")
	if err := os.WriteFile(existing, []byte("# Notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureMarkers(existing, start, end); err != nil {
		t.Fatal(err)
	}
	b, _ = os.ReadFile(existing)
	if string(b) != "# Notes\n\n"+start+"\n"+end+"\n" {
		t.Fatalf("unexpected content: %q", b)
	}

	changed, err = EnsureMarkers(existing, start, end)
	if err != nil || changed {
		t.Fatalf("second call should be a no-op: changed=%v err=%v", changed, err)
	}
	b2, _ := os.ReadFile(existing)
	if string(b2) != string(b) {
		t.Fatalf("content changed on second call")
	}
}

func TestAppendIgnore_IdempotentAndCreates(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".gitignore")
	if err := AppendIgnore(dir, ".airules/"); err != nil {
		t.Fatalf("AppendIgnore: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != ".airules/\n" {
		t.Fatalf("unexpected content: %q", string(b))
	}
	if err := AppendIgnore(dir, ".airules/"); err != nil {
		t.Fatalf("AppendIgnore second: %v", err)
	}
	b2, _ := os.ReadFile(p)
	if strings.Count(string(b2), ".airules/") != 1 {
		t.Fatalf("expected single occurrence, got: %q", string(b2))
	}
}

func TestAppendIgnore_AddsMissingNewline(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(p, []byte("node_modules"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := AppendIgnore(dir, ".airules/"); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(p)
	if string(b) != "node_modules\n.airules/\n" {
		t.Fatalf("unexpected content: %q", b)
	}
}
