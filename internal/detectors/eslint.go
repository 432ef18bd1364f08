package detectors

import (
	"context"
	"strings"

	"github.com/airules/airules/internal/configlit"
	"github.com/airules/airules/internal/ctxparse"
	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

var (
	eslintFlatConfigs   = []string{"eslint.config.js", "eslint.config.mjs", "eslint.config.cjs", "eslint.config.ts"}
	eslintLegacyConfigs = []string{".eslintrc", ".eslintrc.json", ".eslintrc.yaml", ".eslintrc.yml", ".eslintrc.js", ".eslintrc.cjs"}
	biomeConfigs        = []string{"biome.json", "biome.jsonc"}
)

// sharedConfigs maps fragments of an "extends" entry to the style they enforce.
var sharedConfigs = []struct {
	fragment string
	text     string
}{
	{"airbnb", "Follow the Airbnb JavaScript style guide enforced by ESLint."},
	{"standard", "Follow JavaScript Standard Style enforced by ESLint."},
	{"next/core-web-vitals", "Respect the Next.js Core Web Vitals lint rules."},
	{"plugin:@typescript-eslint", "Fix @typescript-eslint findings instead of disabling them inline."},
	{"prettier", "Leave formatting to Prettier; ESLint formatting rules are turned off."},
}

// ESLint reports the linter setup: ESLint (flat or legacy config) or Biome.
func ESLint() scanner.Scanner {
	return scanner.New("eslint",
		"ESLint or Biome linting setup",
		scanESLint)
}

func scanESLint(ctx context.Context, p *scanner.Project) ([]types.Rule, error) {
	var c collector

	if f, ok := p.FirstExisting(biomeConfigs...); ok {
		c.addf(types.CatLinting, "Lint and format with Biome (%s); run `biome check` before committing.", f)
	}

	switch {
	case hasAny(p, eslintFlatConfigs):
		f, _ := p.FirstExisting(eslintFlatConfigs...)
		c.addf(types.CatLinting, "Lint with ESLint using the flat config in %s.", f)
	case hasAny(p, eslintLegacyConfigs):
		f, _ := p.FirstExisting(eslintLegacyConfigs...)
		c.addf(types.CatLinting, "Lint with ESLint (legacy %s config).", f)
		for _, ext := range eslintExtends(ctx, p, f) {
			for _, sc := range sharedConfigs {
				if strings.Contains(ext, sc.fragment) {
					c.add(types.CatLinting, sc.text)
					break
				}
			}
		}
	case p.HasDependency(ctx, "eslint"):
		c.add(types.CatLinting, "Lint with ESLint.")
	}
	if len(c.rules) > 0 {
		c.add(types.CatLinting, "Do not disable lint rules with inline comments unless the reason is written next to them.")
	}
	return c.rules, nil
}

func hasAny(p *scanner.Project, names []string) bool {
	_, ok := p.FirstExisting(names...)
	return ok
}

// eslintExtends returns the "extends" entries of a legacy config.
func eslintExtends(ctx context.Context, p *scanner.Project, file string) []string {
	b, ok := readOptional(ctx, p, file)
	if !ok {
		return nil
	}
	var cfg configlit.Literal
	if strings.HasSuffix(file, "js") {
		lit, err := configlit.Normalize(string(b))
		if err != nil {
			p.Logger().Debug(ctx, "eslint config is not a plain object literal", "file", file, "error", err)
			return nil
		}
		cfg = lit
	} else {
		m, err := ctxparse.Decode(file, b)
		if err != nil {
			p.Logger().Warn(ctx, err, "unreadable eslint config", "file", file)
			return nil
		}
		cfg = configlit.Literal(m)
	}
	if s, ok := cfg.String("extends"); ok {
		return []string{s}
	}
	return cfg.Strings("extends")
}
