package airules

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airules/airules/internal/report"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestResolve_Precedence(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeConfig(t, filepath.Join(xdg, "airules", "config.yml"), "mode: categorized\nenable: node\nthreads: 2\ntimeout: 5s\nno_color: true\n")

	root := t.TempDir()
	writeConfig(t, filepath.Join(root, ".airules.yml"), "mode: flat\noutput: CLAUDE.md\nthreads: 3\nwatch:\n  debounce: 50ms\n")

	s, err := resolve(overrides{Path: root}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, report.Flat, s.Mode, "local beats global")
	assert.Equal(t, "CLAUDE.md", s.Output)
	assert.Equal(t, "node", s.Enable, "global fills gaps")
	assert.Equal(t, 3, s.Threads)
	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.True(t, s.NoColor)
	assert.Equal(t, 50*time.Millisecond, s.Watch.GetDebounce())

	s, err = resolve(overrides{Path: root, Mode: "categorized", Threads: 1, Output: "AGENTS.md", Timeout: time.Second}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, report.Categorized, s.Mode, "flags beat config")
	assert.Equal(t, "AGENTS.md", s.Output)
	assert.Equal(t, 1, s.Threads)
	assert.Equal(t, time.Second, s.Timeout)
}

func TestResolve_Errors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()

	_, err := resolve(overrides{Path: root, Mode: "fancy"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = resolve(overrides{Path: root, LogLevel: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)

	writeConfig(t, filepath.Join(root, ".airules.yml"), "threads: -1\n")
	_, err = resolve(overrides{Path: root}, &bytes.Buffer{})
	assert.Error(t, err, "malformed local config is reported")
}

func TestResolve_ExcludeRules(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeConfig(t, filepath.Join(xdg, "airules", "config.yml"), "exclude_rules:\n  - \"Format code with *\"\n")
	root := t.TempDir()

	s, err := resolve(overrides{Path: root}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Format code with *"}, s.Exclude)

	writeConfig(t, filepath.Join(root, ".airules.yml"), "exclude_rules: []\n")
	s, err = resolve(overrides{Path: root}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Empty(t, s.Exclude, "a local list replaces the global one")
}

func TestResolve_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	s, err := resolve(overrides{Path: root}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, report.Categorized, s.Mode)
	assert.Empty(t, s.Output)
	assert.Zero(t, s.Timeout)
	assert.NotNil(t, s.Logger)
}

func TestRelTo(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "repo")
	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(root, "AGENTS.md"), "AGENTS.md"},
		{filepath.Join(root, "docs", "AGENTS.md"), "docs/AGENTS.md"},
		{filepath.Join(string(filepath.Separator), "elsewhere", "x.md"), "/elsewhere/x.md"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relTo(root, tt.path), tt.path)
	}
}

func TestPickHelpers(t *testing.T) {
	local, global := "local", "global"
	assert.Equal(t, "cli", pickString("cli", &local, &global))
	assert.Equal(t, "local", pickString("", &local, &global))
	assert.Equal(t, "global", pickString("", nil, &global))
	assert.Equal(t, "", pickString("", nil, nil))

	three, four := 3, 4
	assert.Equal(t, 3, pickInt(0, &three, &four))
	assert.Equal(t, 4, pickInt(0, nil, &four))

	no, yes := false, true
	assert.True(t, pickBool(true, &no, &no))
	assert.False(t, pickBool(false, &no, &yes), "local false wins over global true")
	assert.True(t, pickBool(false, nil, &yes))
}
