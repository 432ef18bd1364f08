package detectors

import (
	"context"
	"encoding/json"

	"github.com/airules/airules/internal/configlit"
	"github.com/airules/airules/internal/ctxparse"
	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

// PrettierGeneric is emitted when Prettier is present but its options
// cannot be read.
const PrettierGeneric = "Format code with Prettier."

var (
	prettierDataFiles = []string{".prettierrc", ".prettierrc.json", ".prettierrc.yaml", ".prettierrc.yml"}
	prettierCodeFiles = []string{
		"prettier.config.js", "prettier.config.cjs", "prettier.config.mjs",
		".prettierrc.js", ".prettierrc.cjs", ".prettierrc.mjs",
	}
)

// Prettier turns Prettier options into formatting rules.
func Prettier() scanner.Scanner {
	return scanner.New("prettier",
		"Prettier formatting options (semi, quotes, indentation, width)",
		scanPrettier)
}

func scanPrettier(ctx context.Context, p *scanner.Project) ([]types.Rule, error) {
	opts, source, found := loadPrettierOptions(ctx, p)
	if !found && !p.HasDependency(ctx, "prettier") {
		return nil, nil
	}
	var c collector
	if opts == nil {
		c.add(types.CatFormatting, PrettierGeneric)
		return c.rules, nil
	}
	p.Logger().Debug(ctx, "prettier options loaded", "source", source, "keys", len(opts))
	c.rules = prettierRules(opts)
	if len(c.rules) == 0 {
		c.add(types.CatFormatting, PrettierGeneric)
	}
	return c.rules, nil
}

// loadPrettierOptions returns the options from the first config source that
// exists. found is true when a source exists even if it could not be parsed.
func loadPrettierOptions(ctx context.Context, p *scanner.Project) (opts configlit.Literal, source string, found bool) {
	log := p.Logger()
	for _, f := range prettierDataFiles {
		b, ok := readOptional(ctx, p, f)
		if !ok {
			continue
		}
		m, err := ctxparse.Decode(f, b)
		if err != nil {
			log.Warn(ctx, err, "unreadable prettier config", "file", f)
			return nil, f, true
		}
		return configlit.Literal(m), f, true
	}
	for _, f := range prettierCodeFiles {
		b, ok := readOptional(ctx, p, f)
		if !ok {
			continue
		}
		lit, err := configlit.Normalize(string(b))
		if err != nil {
			log.Debug(ctx, "prettier config is not a plain object literal", "file", f, "error", err)
			return nil, f, true
		}
		return lit, f, true
	}
	if raw, ok := p.PackageOrNil(ctx).Raw("prettier"); ok {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil || m == nil {
			// a string value names a shared config package
			return nil, "package.json", true
		}
		return configlit.Literal(m), "package.json", true
	}
	return nil, "", false
}

func prettierRules(o configlit.Literal) []types.Rule {
	var c collector
	if semi, ok := o.Bool("semi"); ok {
		if semi {
			c.add(types.CatFormatting, "End statements with semicolons.")
		} else {
			c.add(types.CatFormatting, "Omit semicolons at the end of statements.")
		}
	}
	if single, ok := o.Bool("singleQuote"); ok {
		if single {
			c.add(types.CatFormatting, "Use single quotes for strings.")
		} else {
			c.add(types.CatFormatting, "Use double quotes for strings.")
		}
	}
	if tabs, _ := o.Bool("useTabs"); tabs {
		c.add(types.CatFormatting, "Indent with tabs.")
	} else if n, ok := o.Int("tabWidth"); ok {
		c.addf(types.CatFormatting, "Indent with %d spaces.", n)
	}
	if n, ok := o.Int("printWidth"); ok {
		c.addf(types.CatFormatting, "Keep lines within %d characters.", n)
	}
	if tc, ok := o.String("trailingComma"); ok {
		switch tc {
		case "all":
			c.add(types.CatFormatting, "Use trailing commas wherever possible.")
		case "es5":
			c.add(types.CatFormatting, "Use trailing commas where valid in ES5 (objects, arrays).")
		case "none":
			c.add(types.CatFormatting, "Do not use trailing commas.")
		}
	}
	return c.rules
}
