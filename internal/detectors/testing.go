package detectors

import (
	"context"

	"github.com/airules/airules/internal/configlit"
	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

var testRunners = []struct {
	dep  string
	text string
}{
	{"vitest", "Write unit tests with Vitest."},
	{"jest", "Write unit tests with Jest."},
	{"mocha", "Write unit tests with Mocha."},
	{"@playwright/test", "Write end-to-end tests with Playwright."},
	{"cypress", "Write end-to-end tests with Cypress."},
	{"@testing-library/react", "Test React components with Testing Library; query by role and visible text."},
}

var vitestConfigs = []string{"vitest.config.ts", "vitest.config.mts", "vitest.config.js", "vitest.config.mjs"}

// Testing reports test frameworks across JavaScript, Go and Python.
func Testing() scanner.Scanner {
	return scanner.New("testing",
		"Test frameworks (Vitest, Jest, Playwright, Go tests, pytest)",
		scanTesting)
}

func scanTesting(ctx context.Context, p *scanner.Project) ([]types.Rule, error) {
	var c collector
	pkg := p.PackageOrNil(ctx)
	for _, tr := range testRunners {
		if pkg.HasDependency(tr.dep) {
			c.add(types.CatTesting, tr.text)
		}
	}
	if pkg.HasDependency("vitest") && vitestGlobals(ctx, p) {
		c.add(types.CatTesting, "Vitest globals are enabled; describe, it and expect need no import.")
	}
	if pkg != nil {
		if script := pkg.Scripts["test"]; script != "" {
			c.addf(types.CatTesting, "Run the test suite with `%s`.", script)
		}
	}

	if p.Exists("go.mod") && p.Any(ctx, "**/*_test.go") {
		c.add(types.CatTesting, "Put Go tests in _test.go files next to the code and prefer table-driven tests.")
	}
	if p.Exists("pytest.ini") || p.Exists("conftest.py") || p.Any(ctx, "**/conftest.py") {
		c.add(types.CatTesting, "Write Python tests with pytest.")
	}
	return c.rules, nil
}

func vitestGlobals(ctx context.Context, p *scanner.Project) bool {
	f, ok := p.FirstExisting(vitestConfigs...)
	if !ok {
		return false
	}
	b, ok := readOptional(ctx, p, f)
	if !ok {
		return false
	}
	lit, err := configlit.Normalize(string(b))
	if err != nil {
		p.Logger().Debug(ctx, "vitest config is not a plain object literal", "file", f, "error", err)
		return false
	}
	test, _ := lit.Map("test")
	globals, _ := test.Bool("globals")
	return globals
}
