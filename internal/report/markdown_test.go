package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airules/airules/internal/types"
)

const lts = "Use the latest LTS version of Node.js."

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: Categorized},
		{in: "categorized", want: Categorized},
		{in: " FLAT ", want: Flat},
		{in: "tree", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "categorized | flat")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Categorized(t *testing.T) {
	rules := []types.Rule{
		types.NewRule("Write unit tests with Vitest.", types.CatTesting),
		types.NewRule("Use pnpm as the package manager.", types.CatPackageManager),
		types.NewRule("Keep PRs small.", ""),
		types.NewRule("Write unit tests with Vitest.", types.CatTesting),
		types.NewRule("Run `pnpm test` locally.", types.CatTesting),
	}
	want := "## General\n" +
		"- Keep PRs small.\n" +
		"\n" +
		"## Package Manager\n" +
		"- Use pnpm as the package manager.\n" +
		"\n" +
		"## Testing\n" +
		"- Write unit tests with Vitest.\n" +
		"- Run `pnpm test` locally.\n"
	assert.Equal(t, want, Render(rules, Categorized))
}

func TestRender_Flat(t *testing.T) {
	rules := []types.Rule{
		types.NewRule("b", types.CatTesting),
		types.NewRule("a", types.CatCI),
		types.NewRule("b", types.CatCI),
	}
	assert.Equal(t, "- b\n- a\n", Render(rules, Flat))
}

func TestRender_Empty(t *testing.T) {
	assert.Equal(t, "", Render(nil, Categorized))
	assert.Equal(t, "", Render(nil, Flat))
}

func TestRender_SharedRuleAcrossCategories(t *testing.T) {
	rules := []types.Rule{
		types.NewRule(lts, types.CatRuntime),
		types.NewRule(lts, types.CatCI),
	}
	assert.Equal(t,
		"## Continuous Integration\n- "+lts+"\n\n## Runtime\n- "+lts+"\n",
		Render(rules, Categorized))
	assert.Equal(t, "- "+lts+"\n", Render(rules, Flat))
}

func TestCategorize_OrdinalTitleOrder(t *testing.T) {
	rules := []types.Rule{
		types.NewRule("x", types.Category("zeta")),
		types.NewRule("y", types.Category("Zeta")),
		types.NewRule("z", types.CatBuild),
	}
	var titles []string
	for _, g := range Categorize(rules) {
		titles = append(titles, g.Title)
	}
	// uppercase sorts before lowercase in byte order
	assert.Equal(t, []string{"Build", "Zeta", "zeta"}, titles)
}

func TestRender_DeduplicationIsIdempotent(t *testing.T) {
	rules := []types.Rule{
		types.NewRule("one", types.CatLinting),
		types.NewRule("two", ""),
	}
	doubled := append(append([]types.Rule{}, rules...), rules...)
	for _, m := range Modes() {
		assert.Equal(t, Render(rules, m), Render(doubled, m), m)
	}
}
