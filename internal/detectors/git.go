package detectors

import (
	"context"
	"regexp"

	"github.com/airules/airules/internal/git"
	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

const (
	// recentCommits is how far back commit subjects are sampled.
	recentCommits = 50
	// minConventional is the fewest commits needed to infer a convention.
	minConventional = 5
)

// ConventionalCommitsRule is emitted when commits or commitlint call for
// Conventional Commits.
const ConventionalCommitsRule = "Write commit messages as Conventional Commits: `type(scope): subject`, e.g. `fix(api): handle empty body`."

var reConventional = regexp.MustCompile(`^(feat|fix|docs|style|refactor|perf|test|build|ci|chore|revert)(\([^)]+\))?!?: \S`)

var commitlintConfigs = []string{
	"commitlint.config.js", "commitlint.config.cjs", "commitlint.config.mjs", "commitlint.config.ts",
	".commitlintrc", ".commitlintrc.json", ".commitlintrc.yml", ".commitlintrc.yaml",
}

// Git reports commit message conventions and git hooks.
func Git() scanner.Scanner {
	return scanner.New("git",
		"Commit conventions from recent history, commitlint and Husky hooks",
		scanGit)
}

func scanGit(ctx context.Context, p *scanner.Project) ([]types.Rule, error) {
	var c collector

	if hasAny(p, commitlintConfigs) || p.HasDependency(ctx, "@commitlint/cli") {
		c.add(types.CatGit, ConventionalCommitsRule)
	} else {
		subjects, err := git.RecentSubjects(p.Root(), recentCommits)
		switch {
		case git.IsNotRepository(err):
		case err != nil:
			p.Logger().Warn(ctx, err, "cannot read commit history")
		case conventionalShare(subjects) >= 0.8 && len(subjects) >= minConventional:
			c.add(types.CatGit, ConventionalCommitsRule)
		}
	}

	if p.IsDir(".husky") || p.HasDependency(ctx, "husky") {
		c.add(types.CatGit, "Git hooks run through Husky; do not bypass them with --no-verify.")
	}
	if p.HasDependency(ctx, "lint-staged") {
		c.add(types.CatGit, "Staged files are linted on commit by lint-staged; fix its findings instead of skipping it.")
	}
	return c.rules, nil
}

func conventionalShare(subjects []string) float64 {
	if len(subjects) == 0 {
		return 0
	}
	n := 0
	for _, s := range subjects {
		if reConventional.MatchString(s) {
			n++
		}
	}
	return float64(n) / float64(len(subjects))
}
