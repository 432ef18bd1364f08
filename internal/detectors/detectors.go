// Package detectors holds the built-in scanners. Each one looks for a single
// family of project conventions (a package manager, a formatter, a CI
// system) and phrases what it finds as rules for AI assistants.
//
// Scanners never fail on absence: a project without the scanner's target
// simply yields no rules. Unreadable or malformed files are logged through
// the scan-scoped logger and degrade to generic or partial rules.
package detectors

import (
	"context"
	"fmt"

	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

// Default returns the built-in scanners in registration order. The order
// decides the order of rules in flat output and within each category.
func Default() []scanner.Scanner {
	return []scanner.Scanner{
		PackageManager(),
		Node(),
		TypeScript(),
		Prettier(),
		ESLint(),
		Testing(),
		Frameworks(),
		Golang(),
		Rust(),
		Python(),
		Monorepo(),
		Git(),
		CI(),
	}
}

// collector accumulates rules in emission order, once per text and category.
type collector struct {
	rules []types.Rule
	seen  map[types.Rule]bool
}

func (c *collector) add(cat types.Category, text string) {
	r := types.NewRule(text, cat)
	if c.seen[r] {
		return
	}
	if c.seen == nil {
		c.seen = make(map[types.Rule]bool)
	}
	c.seen[r] = true
	c.rules = append(c.rules, r)
}

func (c *collector) addf(cat types.Category, format string, args ...any) {
	c.add(cat, fmt.Sprintf(format, args...))
}

// readOptional reads rel. A missing file is silent; any other error is
// logged and reported as not found.
func readOptional(ctx context.Context, p *scanner.Project, rel string) ([]byte, bool) {
	b, err := p.ReadFile(rel)
	if err != nil {
		if !scanner.IsAbsent(err) {
			p.Logger().Warn(ctx, err, "cannot read file", "file", rel)
		}
		return nil, false
	}
	return b, true
}
