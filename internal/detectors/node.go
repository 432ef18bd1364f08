package detectors

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/blang/semver/v4"

	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

// LTSRule is emitted when a JavaScript project does not pin a Node.js version.
const LTSRule = "Use the latest LTS version of Node.js."

// oldestMaintained is the first Node.js major still receiving security fixes.
var oldestMaintained = semver.MustParse("20.0.0")

// Node reports the Node.js runtime version a project targets.
func Node() scanner.Scanner {
	return scanner.New("node",
		"Node.js version from .nvmrc, .node-version and engines.node",
		scanNode)
}

func scanNode(ctx context.Context, p *scanner.Project) ([]types.Rule, error) {
	var c collector
	log := p.Logger()
	pkg := p.PackageOrNil(ctx)

	if f, ok := p.FirstExisting(".nvmrc", ".node-version"); ok {
		if b, ok := readOptional(ctx, p, f); ok {
			pinned := strings.TrimSpace(string(b))
			switch {
			case pinned == "":
			case isLTSAlias(pinned):
				c.add(types.CatRuntime, LTSRule)
			default:
				if v, err := semver.ParseTolerant(pinned); err == nil {
					c.addf(types.CatRuntime, "Use Node.js %d (pinned in %s).", v.Major, f)
				} else {
					log.Debug(ctx, "unrecognised node version pin", "file", f, "value", pinned)
					c.addf(types.CatRuntime, "Use the Node.js version pinned in %s (%s).", f, pinned)
				}
			}
		}
	}

	if pkg != nil {
		if rng := strings.TrimSpace(pkg.Engines["node"]); rng != "" {
			c.addf(types.CatRuntime, "Keep code compatible with Node.js %s (engines.node in package.json).", rng)
			_, lowest, err := parseEngineRange(rng)
			switch {
			case err != nil:
				log.Debug(ctx, "engines.node is not a range we understand", "range", rng, "error", err)
			case lowest.LT(oldestMaintained):
				c.add(types.CatRuntime, "The supported Node.js range reaches end-of-life releases; do not use APIs newer than the lowest supported version.")
			}
		}
		if len(c.rules) == 0 {
			c.add(types.CatRuntime, LTSRule)
		}
		if pkg.Type == "module" {
			c.add(types.CatLanguage, "The package is ESM (\"type\": \"module\"); use import/export, not require().")
		}
	}
	return c.rules, nil
}

func isLTSAlias(s string) bool {
	s = strings.ToLower(s)
	return s == "lts" || s == "node" || strings.HasPrefix(s, "lts/")
}

var (
	reOpSpace  = regexp.MustCompile(`(>=|<=|>|<|=|\^|~)\s+`)
	reVersion  = regexp.MustCompile(`^v?(\d+|[xX*])(?:\.(\d+|[xX*]))?(?:\.(\d+|[xX*]))?$`)
	comparator = []string{">=", "<=", ">", "<", "=", "^", "~"}
)

// parseEngineRange translates an npm-style range ("^18", ">=18.12 <21",
// "18.x || 20") into a semver.Range and returns the lowest version the
// range admits.
func parseEngineRange(npm string) (semver.Range, semver.Version, error) {
	var (
		alts   []string
		lowest *semver.Version
	)
	for _, alt := range strings.Split(reOpSpace.ReplaceAllString(npm, "$1"), "||") {
		var parts []string
		for _, tok := range strings.Fields(alt) {
			expr, low, err := translateComparator(tok)
			if err != nil {
				return nil, semver.Version{}, err
			}
			parts = append(parts, expr)
			if low != nil && (lowest == nil || low.LT(*lowest)) {
				lowest = low
			}
		}
		if len(parts) == 0 {
			return nil, semver.Version{}, fmt.Errorf("empty alternative in %q", npm)
		}
		alts = append(alts, strings.Join(parts, " "))
	}
	r, err := semver.ParseRange(strings.Join(alts, " || "))
	if err != nil {
		return nil, semver.Version{}, err
	}
	if lowest == nil {
		lowest = &semver.Version{}
	}
	return r, *lowest, nil
}

func translateComparator(tok string) (string, *semver.Version, error) {
	op := ""
	for _, c := range comparator {
		if strings.HasPrefix(tok, c) {
			op = c
			break
		}
	}
	m := reVersion.FindStringSubmatch(strings.TrimPrefix(tok, op))
	if m == nil {
		return "", nil, fmt.Errorf("unsupported comparator %q", tok)
	}
	nums := [3]uint64{}
	given := 0
	for i := 1; i <= 3; i++ {
		if m[i] == "" || strings.ContainsAny(m[i], "xX*") {
			break
		}
		n, err := strconv.ParseUint(m[i], 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("unsupported comparator %q: %w", tok, err)
		}
		nums[i-1] = n
		given++
	}
	base := semver.Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}

	// next is the exclusive upper bound of a partial version ("18" -> 19.0.0).
	next := func(level int) semver.Version {
		switch level {
		case 0:
			return semver.Version{Major: base.Major + 1}
		case 1:
			return semver.Version{Major: base.Major, Minor: base.Minor + 1}
		default:
			return semver.Version{Major: base.Major, Minor: base.Minor, Patch: base.Patch + 1}
		}
	}
	if given == 0 {
		// "*" or "x"
		return ">=0.0.0", &semver.Version{}, nil
	}

	switch op {
	case "^":
		upper := next(0)
		if base.Major == 0 {
			upper = next(min(given-1, 1))
		}
		return fmt.Sprintf(">=%s <%s", base, upper), &base, nil
	case "~":
		return fmt.Sprintf(">=%s <%s", base, next(min(given-1, 1))), &base, nil
	case ">=":
		return ">=" + base.String(), &base, nil
	case ">":
		if given < 3 {
			low := next(given - 1)
			return ">=" + low.String(), &low, nil
		}
		return ">" + base.String(), &base, nil
	case "<":
		return "<" + base.String(), nil, nil
	case "<=":
		if given < 3 {
			return "<" + next(given-1).String(), nil, nil
		}
		return "<=" + base.String(), nil, nil
	default:
		if given < 3 {
			return fmt.Sprintf(">=%s <%s", base, next(given-1)), &base, nil
		}
		return "=" + base.String(), &base, nil
	}
}
