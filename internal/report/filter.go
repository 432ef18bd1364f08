package report

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/airules/airules/internal/types"
)

// Exclude drops rules whose text equals a pattern or matches it as a glob.
// Rule text is not a path: `*` also spans '/' ("The package is ESM*"
// matches text mentioning import/export). Order is kept; with no patterns
// rules is returned as is.
func Exclude(rules []types.Rule, patterns []string) []types.Rule {
	if len(patterns) == 0 {
		return rules
	}
	out := make([]types.Rule, 0, len(rules))
	for _, r := range rules {
		if !excluded(r.Text, patterns) {
			out = append(out, r)
		}
	}
	return out
}

// slashless hides '/' from doublestar so wildcards match the whole text.
var slashless = strings.NewReplacer("/", "\x00")

func excluded(text string, patterns []string) bool {
	flat := slashless.Replace(text)
	for _, p := range patterns {
		if p == text {
			return true
		}
		if ok, _ := doublestar.Match(slashless.Replace(p), flat); ok {
			return true
		}
	}
	return false
}
