package report

import "github.com/airules/airules/internal/types"

// Changes lists rules that appeared or disappeared between two runs.
type Changes struct {
	Added   []types.Rule
	Removed []types.Rule
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool { return len(c.Added) == 0 && len(c.Removed) == 0 }

// Diff compares two rule sets by text and category, keeping the order of
// the set each rule comes from.
func Diff(prev, cur []types.Rule) Changes {
	before := make(map[types.Rule]bool, len(prev))
	for _, r := range prev {
		before[r] = true
	}
	after := make(map[types.Rule]bool, len(cur))
	for _, r := range cur {
		after[r] = true
	}
	var c Changes
	for _, r := range cur {
		if !before[r] {
			c.Added = append(c.Added, r)
			before[r] = true
		}
	}
	for _, r := range prev {
		if !after[r] {
			c.Removed = append(c.Removed, r)
			after[r] = true
		}
	}
	return c
}
