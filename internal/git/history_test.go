package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	return dir, repo
}

func commit(t *testing.T, dir string, repo *gogit.Repository, msg string) {
	t.Helper()
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	f := filepath.Join(dir, "log.txt")
	prev, _ := os.ReadFile(f)
	if err := os.WriteFile(f, append(prev, []byte(msg+"\n")...), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("log.txt"); err != nil {
		t.Fatal(err)
	}
	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit %q: %v", msg, err)
	}
}

func TestRecentSubjects(t *testing.T) {
	dir, repo := initRepo(t)
	commit(t, dir, repo, "feat: first")
	commit(t, dir, repo, "fix(ui): second\n\nlonger body")
	commit(t, dir, repo, "chore: third")

	got, err := RecentSubjects(dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"chore: third", "fix(ui): second"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("RecentSubjects = %q, want %q", got, want)
	}

	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	all, err := RecentSubjects(sub, 10)
	if err != nil {
		t.Fatalf("from subdirectory: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 subjects, got %d", len(all))
	}
}

func TestRecentSubjects_NotRepository(t *testing.T) {
	_, err := RecentSubjects(t.TempDir(), 5)
	if !IsNotRepository(err) {
		t.Fatalf("expected not-a-repository error, got %v", err)
	}

	dir, _ := initRepo(t)
	_, err = RecentSubjects(dir, 5)
	if !IsNotRepository(err) {
		t.Fatalf("expected empty repository to count as absent, got %v", err)
	}
}

func TestRepoMetadata(t *testing.T) {
	dir, repo := initRepo(t)
	commit(t, dir, repo, "init")
	_, err := repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"git@github.com:acme/widgets.git"}})
	if err != nil {
		t.Fatal(err)
	}

	name, hash, branch := RepoMetadata(dir)
	if name != "acme/widgets" {
		t.Fatalf("repo = %q", name)
	}
	if len(hash) != 40 {
		t.Fatalf("expected full commit hash, got %q", hash)
	}
	if branch == "" {
		t.Fatalf("expected non-empty branch")
	}

	if n, c, b := RepoMetadata(t.TempDir()); n != "" || c != "" || b != "" {
		t.Fatalf("expected empty metadata outside a repo")
	}
}

func TestShortRemote(t *testing.T) {
	cases := map[string]string{
		"https://github.com/acme/widgets.git": "acme/widgets",
		"git@gitlab.com:group/proj.git":       "group/proj",
		"https://example.com/x/y":             "https://example.com/x/y",
	}
	for in, want := range cases {
		if got := shortRemote(in); got != want {
			t.Errorf("shortRemote(%q) = %q, want %q", in, got, want)
		}
	}
}
