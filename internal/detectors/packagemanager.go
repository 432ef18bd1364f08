package detectors

import (
	"context"

	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

var lockfiles = []struct {
	file    string
	manager string
}{
	{"pnpm-lock.yaml", "pnpm"},
	{"yarn.lock", "yarn"},
	{"bun.lockb", "bun"},
	{"bun.lock", "bun"},
	{"package-lock.json", "npm"},
}

// PackageManager reports the JavaScript package manager, preferring the
// packageManager field of package.json over lockfile presence.
func PackageManager() scanner.Scanner {
	return scanner.New("package-manager",
		"JavaScript package manager from package.json or lockfiles",
		scanPackageManager)
}

func scanPackageManager(ctx context.Context, p *scanner.Project) ([]types.Rule, error) {
	var c collector
	if name, _, ok := p.PackageOrNil(ctx).Manager(); ok {
		c.addf(types.CatPackageManager, "Use %s as the package manager.", name)
		return c.rules, nil
	}
	for _, lf := range lockfiles {
		if p.Exists(lf.file) {
			c.addf(types.CatPackageManager, "Use %s as the package manager.", lf.manager)
			return c.rules, nil
		}
	}
	return nil, nil
}
