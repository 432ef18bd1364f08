package detectors

import (
	"context"
	"sort"

	"github.com/airules/airules/internal/ctxparse"
	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

// TypeScript reports TypeScript usage and the strictness of tsconfig.json.
func TypeScript() scanner.Scanner {
	return scanner.New("typescript",
		"TypeScript usage and compiler strictness from tsconfig.json",
		scanTypeScript)
}

func scanTypeScript(ctx context.Context, p *scanner.Project) ([]types.Rule, error) {
	hasConfig := p.Exists("tsconfig.json")
	if !hasConfig && !p.HasDependency(ctx, "typescript") {
		return nil, nil
	}
	var c collector
	c.add(types.CatLanguage, "Write new code in TypeScript, not JavaScript.")
	if !hasConfig {
		return c.rules, nil
	}

	b, ok := readOptional(ctx, p, "tsconfig.json")
	if !ok {
		return c.rules, nil
	}
	cfg, err := ctxparse.Decode("tsconfig.json", b)
	if err != nil {
		p.Logger().Warn(ctx, err, "tsconfig.json is not valid JSONC; compiler options skipped")
		return c.rules, nil
	}
	opts, _ := ctxparse.LookupMap(cfg, "compilerOptions")

	if strict, _ := opts["strict"].(bool); strict {
		c.add(types.CatLanguage, "TypeScript strict mode is enabled; avoid `any` and non-null assertions.")
	}
	if v, _ := opts["noUncheckedIndexedAccess"].(bool); v {
		c.add(types.CatLanguage, "Indexed access may be undefined (noUncheckedIndexedAccess); check results before use.")
	}
	if paths, ok := opts["paths"].(map[string]any); ok && len(paths) > 0 {
		aliases := make([]string, 0, len(paths))
		for k := range paths {
			aliases = append(aliases, k)
		}
		sort.Strings(aliases)
		c.addf(types.CatLanguage, "Import through the tsconfig path aliases (e.g. `%s`) instead of long relative paths.", aliases[0])
	}
	return c.rules, nil
}
