package configlit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_AssignmentExport(t *testing.T) {
	lit, err := Normalize("module.exports = { space: 2, semicolon: false, }")
	require.NoError(t, err)
	assert.Equal(t, Literal{"space": float64(2), "semicolon": false}, lit)

	space, ok := lit.Int("space")
	assert.True(t, ok)
	assert.Equal(t, 2, space)
}

func TestNormalize_FunctionValueIsUnparseable(t *testing.T) {
	lit, err := Normalize("export default { run: () => doStuff() }")
	assert.Nil(t, lit)
	assert.True(t, errors.Is(err, ErrUnparseable))
}

func TestNormalize_PrettierStyleConfig(t *testing.T) {
	src := `// prettier.config.js
/** @type {import('prettier').Config} */
module.exports = {
  semi: false, // no semicolons
  singleQuote: true,
  /* block
     comment */
  tabWidth: 4,
  trailingComma: 'all',
  overrides: [
    { files: '*.md', options: { proseWrap: 'always', }, },
  ],
};
`
	lit, err := Normalize(src)
	require.NoError(t, err)

	semi, ok := lit.Bool("semi")
	assert.True(t, ok)
	assert.False(t, semi)

	tc, ok := lit.String("trailingComma")
	assert.True(t, ok)
	assert.Equal(t, "all", tc)

	overrides, ok := lit["overrides"].([]any)
	require.True(t, ok)
	require.Len(t, overrides, 1)
	first, ok := overrides[0].(map[string]any)
	require.True(t, ok)
	opts, ok := Literal(first).Map("options")
	require.True(t, ok)
	wrap, _ := opts.String("proseWrap")
	assert.Equal(t, "always", wrap)
}

func TestNormalize_DefaultExportWithWrapperCall(t *testing.T) {
	lit, err := Normalize(`import { defineConfig } from 'x'
export default defineConfig({ plugins: ['a', 'b'], test: { globals: true } })`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lit.Strings("plugins"))
	test, ok := lit.Map("test")
	require.True(t, ok)
	g, _ := test.Bool("globals")
	assert.True(t, g)
}

func TestNormalize_EarliestMarkerWins(t *testing.T) {
	src := "export default { a: 1 }\nmodule.exports = { b: 2 }"
	lit, err := Normalize(src)
	require.NoError(t, err)
	_, hasA := lit["a"]
	_, hasB := lit["b"]
	assert.True(t, hasA)
	assert.False(t, hasB)
}

func TestNormalize_URLValuesSurvive(t *testing.T) {
	lit, err := Normalize(`module.exports = { homepage: 'https://example.com/docs' }`)
	require.NoError(t, err)
	v, _ := lit.String("homepage")
	assert.Equal(t, "https://example.com/docs", v)
}

func TestNormalize_Failures(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "no export", src: "const x = { a: 1 }"},
		{name: "no object after export", src: "module.exports = require('./base')"},
		{name: "unbalanced braces", src: "module.exports = { a: { b: 1 }"},
		{name: "spread", src: "module.exports = { ...base, a: 1 }"},
		{name: "template literal", src: "export default { name: `x-${y}` }"},
		{name: "identifier value", src: "module.exports = { plugins: [tailwind] }"},
		{name: "escaped single quote", src: `module.exports = { s: 'it\'s' }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit, err := Normalize(tt.src)
			assert.Nil(t, lit)
			assert.ErrorIs(t, err, ErrUnparseable)
		})
	}
}

// Known limitation: a brace inside a string value shifts depth counting.
func TestNormalize_BraceInsideStringIsNotHandled(t *testing.T) {
	_, err := Normalize(`module.exports = { pattern: '}' , a: 1 }`)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestStripComments(t *testing.T) {
	src := `{
  // comment
  "compilerOptions": {
    "strict": true, /* inline */
  },
}`
	assert.JSONEq(t, `{"compilerOptions":{"strict":true}}`, stripJSONC(src))
}
