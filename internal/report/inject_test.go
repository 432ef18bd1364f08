package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airules/airules/internal/logging"
	"github.com/airules/airules/internal/types"
)

var sample = []types.Rule{
	types.NewRule("Use pnpm as the package manager.", types.CatPackageManager),
	types.NewRule("Omit semicolons at the end of statements.", types.CatFormatting),
}

func TestInject_ReplacesBetweenMarkers(t *testing.T) {
	text := "# Project\n\nIntro.\n" + StartMarker + "\nstale\n" + EndMarker + "\n\nOutro.\n"
	got, ok := Inject(text, sample, Flat)
	require.True(t, ok)
	assert.Equal(t,
		"# Project\n\nIntro.\n"+StartMarker+"\n- Use pnpm as the package manager.\n- Omit semicolons at the end of statements.\n"+EndMarker+"\n\nOutro.\n",
		got)
}

func TestInject_EmptyRules(t *testing.T) {
	got, ok := Inject("a"+StartMarker+"old"+EndMarker+"b", nil, Categorized)
	require.True(t, ok)
	assert.Equal(t, "a"+StartMarker+"\n"+EndMarker+"b", got)
}

func TestInject_MissingMarkers(t *testing.T) {
	tests := map[string]string{
		"none":           "# Title\nbody\n",
		"start only":     "x " + StartMarker + " y",
		"end only":       "x " + EndMarker + " y",
		"end then start": EndMarker + "\nmiddle\n" + StartMarker,
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := Inject(text, sample, Categorized)
			assert.False(t, ok)
			assert.Equal(t, text, got)
		})
	}
}

func TestInject_FirstEndMarkerAfterStart(t *testing.T) {
	text := EndMarker + StartMarker + "old" + EndMarker + "keep" + EndMarker
	got, ok := InjectRendered(text, "new\n")
	require.True(t, ok)
	assert.Equal(t, EndMarker+StartMarker+"\nnew\n"+EndMarker+"keep"+EndMarker, got)
}

func TestInject_RoundTrip(t *testing.T) {
	text := "prefix\n" + StartMarker + EndMarker + "\nsuffix"
	for _, m := range Modes() {
		once, ok := Inject(text, sample, m)
		require.True(t, ok)
		twice, ok := Inject(once, sample, m)
		require.True(t, ok)
		assert.Equal(t, once, twice, m)
	}
}

func TestExtract(t *testing.T) {
	rendered := Render(sample, Flat)
	text, ok := Inject("a\n"+StartMarker+"old"+EndMarker+"\nb", sample, Flat)
	require.True(t, ok)

	got, ok := Extract(text)
	require.True(t, ok)
	assert.Equal(t, rendered, got)

	_, ok = Extract("no markers here")
	assert.False(t, ok)
	_, ok = Extract(EndMarker + StartMarker)
	assert.False(t, ok)
}

func TestInjectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "AGENTS.md")
	require.NoError(t, os.WriteFile(path, []byte("# Agents\n"+StartMarker+"\n"+EndMarker+"\n"), 0o600))

	var logs bytes.Buffer
	ctx := logging.NewContext(context.Background(), logging.New(logging.Config{Level: logging.LevelDebug, Format: "json", Output: &logs}))

	res, err := InjectFile(ctx, path, sample, Categorized)
	require.NoError(t, err)
	assert.True(t, res.Injected)
	assert.True(t, res.Changed)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "## Package Manager\n- Use pnpm as the package manager.\n")
	st, _ := os.Stat(path)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	again, err := InjectFile(ctx, path, sample, Categorized)
	require.NoError(t, err)
	assert.True(t, again.Injected)
	assert.False(t, again.Changed)
	assert.Equal(t, res.Hash, again.Hash)
}

func TestInjectFile_MissingMarkersLeavesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CLAUDE.md")
	original := []byte("# No markers here\n")
	require.NoError(t, os.WriteFile(path, original, 0o644))

	var logs bytes.Buffer
	ctx := logging.NewContext(context.Background(), logging.New(logging.Config{Level: logging.LevelWarn, Format: "json", Output: &logs}))

	res, err := InjectFile(ctx, path, sample, Flat)
	require.NoError(t, err)
	assert.False(t, res.Injected)
	assert.False(t, res.Changed)

	b, _ := os.ReadFile(path)
	assert.Equal(t, original, b)
	assert.Contains(t, logs.String(), "WARN")
	assert.Contains(t, logs.String(), ErrMarkersNotFound.Error())
}

func TestInjectFile_MissingFile(t *testing.T) {
	_, err := InjectFile(context.Background(), filepath.Join(t.TempDir(), "nope.md"), sample, Flat)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteFileAndStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.md")
	require.NoError(t, WriteFile(path, sample, Flat))

	b, _ := os.ReadFile(path)
	assert.Equal(t, Block(Render(sample, Flat)), string(b))

	stale, err := Stale(path, sample, Flat)
	require.NoError(t, err)
	assert.False(t, stale)

	stale, err = Stale(path, sample[:1], Flat)
	require.NoError(t, err)
	assert.True(t, stale)

	plain := filepath.Join(t.TempDir(), "plain.md")
	require.NoError(t, os.WriteFile(plain, []byte("text"), 0o644))
	_, err = Stale(plain, sample, Flat)
	assert.ErrorIs(t, err, ErrMarkersNotFound)
}
