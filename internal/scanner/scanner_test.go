package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airules/airules/internal/types"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func stub(id string, rules ...types.Rule) Scanner {
	return New(id, id+" scanner", func(context.Context, *Project) ([]types.Rule, error) {
		return rules, nil
	})
}

func TestRegistry_OrderAndDuplicates(t *testing.T) {
	r, err := NewRegistry(stub("b"), stub("a"), stub("c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, r.IDs())
	assert.Equal(t, 3, r.Len())

	err = r.Register(stub("a"))
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_Filter(t *testing.T) {
	r, err := NewRegistry(stub("node"), stub("python"), stub("prettier"), stub("git"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		enable  string
		disable string
		want    []string
	}{
		{name: "no filters", want: []string{"node", "python", "prettier", "git"}},
		{name: "enable list", enable: "git, node", want: []string{"node", "git"}},
		{name: "disable list", disable: "python", want: []string{"node", "prettier", "git"}},
		{name: "glob patterns", enable: "p*", disable: "python", want: []string{"prettier"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Filter(tt.enable, tt.disable).IDs())
		})
	}
}

func TestProject_Lookups(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"devDependencies": {"vitest": "1.0.0"}}`)
	writeFile(t, root, "src/a_test.go", "package a")
	writeFile(t, root, "node_modules/x/b_test.go", "package x")
	writeFile(t, root, "fixtures/c_test.go", "package c")
	writeFile(t, root, ".airulesignore", "fixtures/\n")

	p := Open(root, nil)
	ctx := context.Background()

	assert.True(t, p.Exists("src"))
	assert.True(t, p.IsDir("src"))
	assert.False(t, p.Exists("missing.txt"))

	name, ok := p.FirstExisting("yarn.lock", "package.json")
	assert.True(t, ok)
	assert.Equal(t, "package.json", name)

	files, err := p.Glob(ctx, "**/*_test.go")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a_test.go"}, files)
	assert.True(t, p.Any(ctx, "**/*.go"))
	assert.False(t, p.Any(ctx, "**/*.rs"))

	assert.True(t, p.HasDependency(ctx, "vitest"))
	assert.False(t, p.HasDependency(ctx, "jest"))

	_, err = p.ReadFile("missing.txt")
	assert.True(t, IsAbsent(err))
}

func TestProject_MalformedManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"dependencies": `)
	p := Open(root, nil)
	assert.Nil(t, p.PackageOrNil(context.Background()))
	assert.False(t, p.HasDependency(context.Background(), "react"))
}

func TestFuncScanner_OpensProjectAtRoot(t *testing.T) {
	root := t.TempDir()
	var seen string
	s := New("probe", "records the root", func(_ context.Context, p *Project) ([]types.Rule, error) {
		seen = p.Root()
		return []types.Rule{types.NewRule("x", "")}, nil
	})
	rules, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, root, seen)
	assert.Len(t, rules, 1)
	assert.Equal(t, "probe", s.ID())
	assert.Equal(t, "records the root", s.Description())
}
