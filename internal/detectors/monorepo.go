package detectors

import (
	"context"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

type pnpmWorkspace struct {
	Packages []string `yaml:"packages"`
}

// Monorepo reports workspace layouts and task runners.
func Monorepo() scanner.Scanner {
	return scanner.New("monorepo",
		"Workspaces (pnpm, npm/yarn) and task runners (Turborepo, Nx, Lerna)",
		scanMonorepo)
}

func scanMonorepo(ctx context.Context, p *scanner.Project) ([]types.Rule, error) {
	var c collector

	if b, ok := readOptional(ctx, p, "pnpm-workspace.yaml"); ok {
		var ws pnpmWorkspace
		if err := yaml.Unmarshal(b, &ws); err != nil {
			p.Logger().Warn(ctx, err, "unreadable pnpm-workspace.yaml")
			c.add(types.CatMonorepo, "This is a pnpm workspace monorepo.")
		} else {
			c.add(types.CatMonorepo, workspaceRule("pnpm workspace", ws.Packages))
		}
	} else if globs := p.PackageOrNil(ctx).WorkspaceGlobs(); len(globs) > 0 {
		c.add(types.CatMonorepo, workspaceRule("workspace", globs))
	}

	switch {
	case p.Exists("turbo.json"):
		c.add(types.CatMonorepo, "Run tasks through Turborepo (`turbo run <task>`) so caching and task ordering apply.")
	case p.Exists("nx.json"):
		c.add(types.CatMonorepo, "Run tasks through Nx (`nx run <project>:<target>`, `nx affected`).")
	case p.Exists("lerna.json"):
		c.add(types.CatMonorepo, "Packages are managed with Lerna; run scripts through `lerna run`.")
	}
	if len(c.rules) > 0 {
		c.add(types.CatMonorepo, "Add dependencies to the package that uses them, not to the repository root.")
	}
	return c.rules, nil
}

func workspaceRule(kind string, globs []string) string {
	if len(globs) == 0 {
		return "This is a " + kind + " monorepo."
	}
	return "This is a " + kind + " monorepo; packages live in " + strings.Join(globs, ", ") + "."
}
