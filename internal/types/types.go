package types

import "sort"

// Category is a tag used to group related rules under a display title.
type Category string

const (
	CatPackageManager Category = "package-manager"
	CatLanguage       Category = "language"
	CatRuntime        Category = "runtime"
	CatFramework      Category = "framework"
	CatLinting        Category = "linting"
	CatFormatting     Category = "formatting"
	CatTesting        Category = "testing"
	CatBuild          Category = "build"
	CatMonorepo       Category = "monorepo"
	CatGit            Category = "git"
	CatCI             Category = "ci"
	CatStyling        Category = "styling"
	CatDatabase       Category = "database"
)

// GeneralTitle is the display title for rules without a category.
const GeneralTitle = "General"

// every tag added above needs an entry here
var titles = map[Category]string{
	CatPackageManager: "Package Manager",
	CatLanguage:       "Language",
	CatRuntime:        "Runtime",
	CatFramework:      "Framework",
	CatLinting:        "Linting",
	CatFormatting:     "Formatting",
	CatTesting:        "Testing",
	CatBuild:          "Build",
	CatMonorepo:       "Monorepo",
	CatGit:            "Git",
	CatCI:             "Continuous Integration",
	CatStyling:        "Styling",
	CatDatabase:       "Database",
}

// Title returns the human-readable title for c. The empty category maps to
// GeneralTitle and unknown tags map to their raw text.
func (c Category) Title() string {
	if c == "" {
		return GeneralTitle
	}
	if t, ok := titles[c]; ok {
		return t
	}
	return string(c)
}

// Categories returns the known vocabulary sorted by tag.
func Categories() []Category {
	out := make([]Category, 0, len(titles))
	for c := range titles {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Rule is one recommendation emitted by a scanner. Rules are compared by
// Text only when deduplicating.
type Rule struct {
	Text     string   `json:"text"`
	Category Category `json:"category,omitempty"`
}

// NewRule builds a rule. An empty text is a programming error and panics.
func NewRule(text string, cat Category) Rule {
	if text == "" {
		panic("types: rule text must not be empty")
	}
	return Rule{Text: text, Category: cat}
}

// Title returns the display title of the rule's category.
func (r Rule) Title() string { return r.Category.Title() }

// Valid reports whether the rule satisfies the non-empty text invariant.
func (r Rule) Valid() bool { return r.Text != "" }
