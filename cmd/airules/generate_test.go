package airules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airules/airules/internal/audit"
	"github.com/airules/airules/internal/cache"
	"github.com/airules/airules/internal/logging"
	"github.com/airules/airules/internal/report"
)

const pnpmRule = "Use pnpm as the package manager."

func pnpmProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(`{"name":"app","packageManager":"pnpm@9.1.0"}`), 0o644))
	return root
}

func testSettings(root, output string) settings {
	return settings{
		Root:    root,
		Mode:    report.Categorized,
		Output:  output,
		Enable:  "package-manager",
		Threads: 1,
		Logger:  logging.Discard(),
	}
}

func TestGenerate_InjectsIntoExistingFile(t *testing.T) {
	root := pnpmProject(t)
	target := filepath.Join(root, "AGENTS.md")
	original := "# Agents\n\nHand-written intro.\n\n" + report.StartMarker + "\n" + report.EndMarker + "\n\nFooter.\n"
	require.NoError(t, os.WriteFile(target, []byte(original), 0o644))

	out, err := generate(context.Background(), testSettings(root, "AGENTS.md"), false)
	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.True(t, out.Inject.Injected)
	assert.True(t, out.Inject.Changed)
	assert.Empty(t, out.Failed())

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	want := "# Agents\n\nHand-written intro.\n\n" + report.StartMarker + "\n## Package Manager\n- " + pnpmRule + "\n" + report.EndMarker + "\n\nFooter.\n"
	assert.Equal(t, want, string(b))

	again, err := generate(context.Background(), testSettings(root, "AGENTS.md"), false)
	require.NoError(t, err)
	assert.True(t, again.Inject.Injected)
	assert.False(t, again.Inject.Changed)
	assert.True(t, again.Changes.Empty())

	res, err := cache.LoadResults(root)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	history, err := audit.NewAuditLog(root).LoadHistory()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "AGENTS.md", history[0].Target)
	assert.False(t, history[0].Changed)
	assert.True(t, history[1].Changed)
	assert.Equal(t, map[string]int{"Package Manager": 1}, history[0].CategoryCounts)
}

func TestGenerate_CreatesMissingTarget(t *testing.T) {
	root := pnpmProject(t)
	s := testSettings(root, filepath.Join("docs", "AGENTS.md"))
	s.Mode = report.Flat

	out, err := generate(context.Background(), s, false)
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.True(t, out.Inject.Changed)

	b, err := os.ReadFile(filepath.Join(root, "docs", "AGENTS.md"))
	require.NoError(t, err)
	assert.Equal(t, report.Block("- "+pnpmRule+"\n"), string(b))
}

func TestGenerate_MissingMarkersLeavesFile(t *testing.T) {
	root := pnpmProject(t)
	target := filepath.Join(root, "AGENTS.md")
	require.NoError(t, os.WriteFile(target, []byte("# no markers\n"), 0o644))

	out, err := generate(context.Background(), testSettings(root, "AGENTS.md"), false)
	require.NoError(t, err)
	assert.False(t, out.Inject.Injected)

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "# no markers\n", string(b))
}

func TestGenerate_Check(t *testing.T) {
	root := pnpmProject(t)
	s := testSettings(root, "AGENTS.md")

	out, err := generate(context.Background(), s, true)
	require.NoError(t, err)
	assert.True(t, out.Stale, "missing target is stale")
	_, err = os.Stat(filepath.Join(root, "AGENTS.md"))
	assert.True(t, os.IsNotExist(err), "check mode must not create the target")
	_, err = os.Stat(audit.NewAuditLog(root).Path())
	assert.True(t, os.IsNotExist(err), "check mode must not write the audit log")

	_, err = generate(context.Background(), s, false)
	require.NoError(t, err)
	out, err = generate(context.Background(), s, true)
	require.NoError(t, err)
	assert.False(t, out.Stale)

	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(`{"packageManager":"yarn@4.0.0"}`), 0o644))
	out, err = generate(context.Background(), s, true)
	require.NoError(t, err)
	assert.True(t, out.Stale)
}

func TestGenerate_CheckWithoutMarkers(t *testing.T) {
	root := pnpmProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "AGENTS.md"), []byte("plain\n"), 0o644))
	_, err := generate(context.Background(), testSettings(root, "AGENTS.md"), true)
	assert.ErrorIs(t, err, report.ErrMarkersNotFound)
}

func TestGenerate_NoCacheWritesNothingExtra(t *testing.T) {
	root := pnpmProject(t)
	s := testSettings(root, "")
	s.NoCache = true

	out, err := generate(context.Background(), s, false)
	require.NoError(t, err)
	assert.Equal(t, "## Package Manager\n- "+pnpmRule+"\n", out.Rendered)
	assert.Empty(t, out.Target)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "package.json", entries[0].Name())
}

func TestGenerate_InvalidRoot(t *testing.T) {
	_, err := generate(context.Background(), testSettings(filepath.Join(t.TempDir(), "missing"), ""), false)
	assert.Error(t, err)
}

func TestGenerate_ReportsRuleChanges(t *testing.T) {
	root := pnpmProject(t)
	s := testSettings(root, "")
	_, err := generate(context.Background(), s, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(`{"packageManager":"bun@1.1.0"}`), 0o644))
	out, err := generate(context.Background(), s, false)
	require.NoError(t, err)
	require.Len(t, out.Changes.Added, 1)
	require.Len(t, out.Changes.Removed, 1)
	assert.Equal(t, pnpmRule, out.Changes.Removed[0].Text)
}

func TestSummaryOf(t *testing.T) {
	root := pnpmProject(t)
	out, err := generate(context.Background(), testSettings(root, "AGENTS.md"), false)
	require.NoError(t, err)
	sum := summaryOf(testSettings(root, "AGENTS.md"), out)
	assert.Equal(t, 1, sum.Rules)
	assert.Equal(t, "AGENTS.md", sum.Target)
	assert.True(t, sum.Changed)
}

func TestGenerate_ExcludeRules(t *testing.T) {
	root := pnpmProject(t)
	s := testSettings(root, "")
	s.NoCache = true
	s.Exclude = []string{"Use * as the package manager."}

	out, err := generate(context.Background(), s, false)
	require.NoError(t, err)
	assert.Empty(t, out.Result.Rules)
	assert.Equal(t, "", out.Rendered)
}
