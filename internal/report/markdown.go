package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/airules/airules/internal/types"
)

// Mode selects how rules are rendered.
type Mode string

const (
	// Categorized groups rules under "## <Title>" headers.
	Categorized Mode = "categorized"
	// Flat renders a single deduplicated list without headers.
	Flat Mode = "flat"
)

// Modes lists the supported render modes.
func Modes() []Mode { return []Mode{Categorized, Flat} }

// ParseMode resolves a mode name. The empty string selects Categorized.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return Categorized, nil
	}
	names := make([]string, 0, 2)
	for _, known := range Modes() {
		if m == known {
			return known, nil
		}
		names = append(names, string(known))
	}
	return "", fmt.Errorf("unknown mode %q (want %s)", s, strings.Join(names, " | "))
}

// Group is one category section of the categorized view.
type Group struct {
	Title string   `json:"title"`
	Rules []string `json:"rules"`
}

// Categorize groups rules by display title, dropping repeated texts within
// a group while keeping first-occurrence order. Groups are sorted by title
// using byte-wise comparison.
func Categorize(rules []types.Rule) []Group {
	index := map[string]int{}
	seen := map[string]map[string]bool{}
	var groups []Group
	for _, r := range rules {
		title := r.Title()
		i, ok := index[title]
		if !ok {
			i = len(groups)
			index[title] = i
			seen[title] = map[string]bool{}
			groups = append(groups, Group{Title: title})
		}
		if seen[title][r.Text] {
			continue
		}
		seen[title][r.Text] = true
		groups[i].Rules = append(groups[i].Rules, r.Text)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups
}

// Flatten returns rule texts across all categories with repeats dropped,
// keeping first-occurrence order.
func Flatten(rules []types.Rule) []string {
	seen := make(map[string]bool, len(rules))
	var out []string
	for _, r := range rules {
		if seen[r.Text] {
			continue
		}
		seen[r.Text] = true
		out = append(out, r.Text)
	}
	return out
}

// Render produces Markdown for rules. Categorized output is a "## <Title>"
// header per group followed by "- <text>" lines, with a blank line between
// groups; flat output is the "- <text>" lines alone. No rules render as "".
func Render(rules []types.Rule, mode Mode) string {
	var b strings.Builder
	if mode == Flat {
		writeList(&b, Flatten(rules))
		return b.String()
	}
	for i, g := range Categorize(rules) {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("## ")
		b.WriteString(g.Title)
		b.WriteByte('\n')
		writeList(&b, g.Rules)
	}
	return b.String()
}

func writeList(b *strings.Builder, texts []string) {
	for _, t := range texts {
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteByte('\n')
	}
}
