package detectors

import (
	"context"

	"github.com/BurntSushi/toml"

	"github.com/airules/airules/internal/configlit"
	"github.com/airules/airules/internal/ctxparse"
	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

// Python reports the Python version floor, tooling and dependency manager
// from pyproject.toml and lockfiles.
func Python() scanner.Scanner {
	return scanner.New("python",
		"Python version, Ruff/Black/mypy/pytest and Poetry/uv from pyproject.toml",
		scanPython)
}

func scanPython(ctx context.Context, p *scanner.Project) ([]types.Rule, error) {
	var c collector
	doc := map[string]any{}
	b, hasPyproject := readOptional(ctx, p, "pyproject.toml")
	if hasPyproject {
		if _, err := toml.Decode(string(b), &doc); err != nil {
			p.Logger().Warn(ctx, err, "unreadable pyproject.toml; tool settings skipped")
			doc = map[string]any{}
		}
	}
	hasRequirements := p.Exists("requirements.txt")
	if !hasPyproject && !hasRequirements && !p.Exists("setup.py") {
		return nil, nil
	}

	if v, ok := ctxparse.LookupString(doc, "project.requires-python"); ok {
		c.addf(types.CatLanguage, "Target Python %s (requires-python).", v)
	} else if v, ok := ctxparse.LookupString(doc, "tool.poetry.dependencies.python"); ok {
		c.addf(types.CatLanguage, "Target Python %s (Poetry python constraint).", v)
	}

	tool, _ := ctxparse.LookupMap(doc, "tool")
	if ruff, ok := tool["ruff"].(map[string]any); ok {
		c.add(types.CatLinting, "Lint Python code with Ruff and fix findings before committing.")
		if n, ok := configlit.Literal(ruff).Int("line-length"); ok {
			c.addf(types.CatFormatting, "Keep Python lines within %d characters.", n)
		}
	}
	if black, ok := tool["black"].(map[string]any); ok {
		c.add(types.CatFormatting, "Format Python code with Black.")
		if n, ok := configlit.Literal(black).Int("line-length"); ok {
			c.addf(types.CatFormatting, "Keep Python lines within %d characters.", n)
		}
	}
	if _, ok := tool["mypy"]; ok {
		c.add(types.CatLanguage, "Add type hints to new code; it is type-checked with mypy.")
	}
	if _, ok := ctxparse.Lookup(doc, "tool.pytest.ini_options"); ok {
		c.add(types.CatTesting, "Write Python tests with pytest.")
	}

	switch {
	case p.Exists("uv.lock"):
		c.add(types.CatPackageManager, "Manage Python dependencies with uv (`uv add`, `uv run`).")
	case p.Exists("poetry.lock") || tool["poetry"] != nil:
		c.add(types.CatPackageManager, "Manage Python dependencies with Poetry.")
	case p.Exists("Pipfile"):
		c.add(types.CatPackageManager, "Manage Python dependencies with Pipenv.")
	case hasRequirements:
		c.add(types.CatPackageManager, "Declare Python dependencies in requirements.txt.")
	}
	if len(c.rules) == 0 {
		c.add(types.CatLanguage, "This is a Python project.")
	}
	return c.rules, nil
}
