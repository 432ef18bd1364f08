package detectors

import (
	"bufio"
	"bytes"
	"context"
	"go/build/constraint"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"

	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

// maxGoFiles bounds how many sources are opened to look for build constraints.
const maxGoFiles = 500

var goLibraries = []struct {
	path string
	cat  types.Category
	text string
}{
	{"github.com/gin-gonic/gin", types.CatFramework, "Build HTTP handlers with Gin (gin.Context, router groups)."},
	{"github.com/labstack/echo/v4", types.CatFramework, "Build HTTP handlers with Echo."},
	{"github.com/go-chi/chi/v5", types.CatFramework, "Route HTTP requests with chi and plain net/http handlers."},
	{"github.com/gofiber/fiber/v2", types.CatFramework, "Build HTTP handlers with Fiber."},
	{"github.com/spf13/cobra", types.CatFramework, "Add CLI commands as cobra.Command values registered in init()."},
	{"github.com/stretchr/testify", types.CatTesting, "Use testify's assert and require in Go tests."},
	{"gorm.io/gorm", types.CatDatabase, "Access the database through GORM models."},
	{"github.com/jackc/pgx/v5", types.CatDatabase, "Talk to PostgreSQL through pgx."},
}

// Golang reports Go toolchain version, notable libraries and build
// constraint conventions.
func Golang() scanner.Scanner {
	return scanner.New("golang",
		"Go version, libraries and build constraints from go.mod and sources",
		scanGolang)
}

func scanGolang(ctx context.Context, p *scanner.Project) ([]types.Rule, error) {
	var c collector
	log := p.Logger()
	declared := ""

	if b, ok := readOptional(ctx, p, "go.mod"); ok {
		mf, err := modfile.ParseLax("go.mod", b, nil)
		if err != nil {
			log.Warn(ctx, err, "unreadable go.mod; module rules skipped")
		} else {
			if mf.Go != nil {
				declared = mf.Go.Version
				c.addf(types.CatLanguage, "Target Go %s as declared in go.mod; do not use newer language features or APIs.", declared)
			}
			if mf.Module != nil {
				c.addf(types.CatLanguage, "Import this module's packages by their full path under %s.", mf.Module.Mod.Path)
			}
			required := make(map[string]bool, len(mf.Require))
			for _, r := range mf.Require {
				required[r.Mod.Path] = true
			}
			for _, lib := range goLibraries {
				if required[lib.path] {
					c.add(lib.cat, lib.text)
				}
			}
		}
	}

	files, err := p.Glob(ctx, "**/*.go")
	if err != nil {
		return c.rules, err
	}
	if len(files) == 0 && len(c.rules) == 0 {
		return nil, nil
	}
	if p.Exists("go.work") {
		c.add(types.CatMonorepo, "This is a Go workspace (go.work); run go commands from the workspace root.")
	}

	example, minGo := scanConstraints(ctx, p, files)
	if example != "" {
		c.addf(types.CatBuild, "Put platform- or version-specific code in files guarded by //go:build lines (e.g. `//go:build %s`), not // +build.", example)
	}
	if minGo != "" && declared == "" {
		c.addf(types.CatLanguage, "Target Go %s or newer; sources carry a //go:build %s constraint.", strings.TrimPrefix(minGo, "go"), minGo)
	}
	return c.rules, nil
}

// scanConstraints reads the header of each file up to the package clause.
// It returns the first platform constraint seen and the highest Go version
// any constraint requires.
func scanConstraints(ctx context.Context, p *scanner.Project, files []string) (example, minGo string) {
	if len(files) > maxGoFiles {
		files = files[:maxGoFiles]
	}
	for _, f := range files {
		if ctx.Err() != nil {
			return example, minGo
		}
		b, ok := readOptional(ctx, p, f)
		if !ok {
			continue
		}
		expr := buildConstraint(b)
		if expr == nil {
			continue
		}
		if v := constraint.GoVersion(expr); v != "" {
			if minGo == "" || semver.Compare("v"+strings.TrimPrefix(v, "go"), "v"+strings.TrimPrefix(minGo, "go")) > 0 {
				minGo = v
			}
		}
		if example == "" && hasPlatformTag(expr) {
			example = expr.String()
		}
	}
	return example, minGo
}

func buildConstraint(src []byte) constraint.Expr {
	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "package ") {
			return nil
		}
		if constraint.IsGoBuild(line) {
			expr, err := constraint.Parse(line)
			if err != nil {
				return nil
			}
			return expr
		}
	}
	return nil
}

func hasPlatformTag(e constraint.Expr) bool {
	switch x := e.(type) {
	case *constraint.TagExpr:
		return !strings.HasPrefix(x.Tag, "go1.")
	case *constraint.NotExpr:
		return hasPlatformTag(x.X)
	case *constraint.AndExpr:
		return hasPlatformTag(x.X) || hasPlatformTag(x.Y)
	case *constraint.OrExpr:
		return hasPlatformTag(x.X) || hasPlatformTag(x.Y)
	}
	return false
}
