package detectors

import (
	"context"

	"github.com/airules/airules/internal/manifest"
	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

type frameworkRule struct {
	deps []string
	cat  types.Category
	text string
	// skip suppresses the rule when a more specific framework is present.
	skip []string
}

var frameworkRules = []frameworkRule{
	{deps: []string{"next"}, cat: types.CatFramework, text: "This is a Next.js app; follow its file-based routing and data-fetching conventions."},
	{deps: []string{"react"}, skip: []string{"next"}, cat: types.CatFramework, text: "Write React function components with hooks; do not add class components."},
	{deps: []string{"nuxt"}, cat: types.CatFramework, text: "This is a Nuxt app; rely on auto-imports and file-based routing."},
	{deps: []string{"vue"}, skip: []string{"nuxt"}, cat: types.CatFramework, text: "Write Vue single-file components with the Composition API and <script setup>."},
	{deps: []string{"@sveltejs/kit"}, cat: types.CatFramework, text: "This is a SvelteKit app; put routes under src/routes."},
	{deps: []string{"svelte"}, skip: []string{"@sveltejs/kit"}, cat: types.CatFramework, text: "Write UI as Svelte components."},
	{deps: []string{"@nestjs/core"}, cat: types.CatFramework, text: "Structure server code as NestJS modules, controllers and providers."},
	{deps: []string{"express"}, skip: []string{"@nestjs/core"}, cat: types.CatFramework, text: "Build HTTP endpoints with Express routers and middleware."},
	{deps: []string{"tailwindcss"}, cat: types.CatStyling, text: "Style with Tailwind CSS utility classes instead of custom CSS files."},
	{deps: []string{"styled-components", "@emotion/styled"}, cat: types.CatStyling, text: "Style components with CSS-in-JS (styled components)."},
	{deps: []string{"prisma", "@prisma/client"}, cat: types.CatDatabase, text: "Access the database through Prisma; change prisma/schema.prisma and create a migration for schema changes."},
	{deps: []string{"drizzle-orm"}, cat: types.CatDatabase, text: "Access the database through Drizzle ORM and keep schema definitions in code."},
}

// Frameworks reports UI, server, styling and database frameworks from
// package.json dependencies.
func Frameworks() scanner.Scanner {
	return scanner.New("frameworks",
		"Application frameworks, styling and ORM libraries",
		scanFrameworks)
}

func scanFrameworks(ctx context.Context, p *scanner.Project) ([]types.Rule, error) {
	pkg := p.PackageOrNil(ctx)
	if pkg == nil {
		return nil, nil
	}
	var c collector
	for _, fr := range frameworkRules {
		if matches(pkg, fr) {
			c.add(fr.cat, fr.text)
		}
	}
	if pkg.HasDependency("next") {
		if p.IsDir("app") || p.IsDir("src/app") {
			c.add(types.CatFramework, "Add new routes with the Next.js App Router (app/ directory), not pages/.")
		} else if p.IsDir("pages") || p.IsDir("src/pages") {
			c.add(types.CatFramework, "Add new routes under the Next.js pages/ directory.")
		}
	}
	return c.rules, nil
}

func matches(pkg *manifest.Package, fr frameworkRule) bool {
	return pkg.HasAnyDependency(fr.deps...) && !pkg.HasAnyDependency(fr.skip...)
}
