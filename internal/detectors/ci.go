package detectors

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

// maxCICommands caps how many CI commands are quoted back as rules.
const maxCICommands = 3

type workflow struct {
	Name string                 `yaml:"name"`
	Jobs map[string]workflowJob `yaml:"jobs"`
}

type workflowJob struct {
	Steps []workflowStep `yaml:"steps"`
}

type workflowStep struct {
	Uses string         `yaml:"uses"`
	Run  string         `yaml:"run"`
	With map[string]any `yaml:"with"`
}

var reCheckCommand = regexp.MustCompile(`\b(test|lint|typecheck|type-check|check|vet|clippy|fmt)\b`)

// CI reports continuous integration systems and the checks they run.
func CI() scanner.Scanner {
	return scanner.New("ci",
		"CI systems (GitHub Actions, GitLab CI, CircleCI) and their check commands",
		scanCI)
}

func scanCI(ctx context.Context, p *scanner.Project) ([]types.Rule, error) {
	var c collector

	files, err := p.Glob(ctx, ".github/workflows/*.{yml,yaml}")
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		var (
			names    []string
			commands []string
			seen     = map[string]bool{}
			nodeLTS  bool
		)
		for _, f := range files {
			b, ok := readOptional(ctx, p, f)
			if !ok {
				continue
			}
			var wf workflow
			if err := yaml.Unmarshal(b, &wf); err != nil {
				p.Logger().Warn(ctx, err, "unreadable workflow", "file", f)
				continue
			}
			name := wf.Name
			if name == "" {
				name = strings.TrimSuffix(path.Base(f), path.Ext(f))
			}
			names = append(names, name)

			for _, step := range workflowSteps(wf) {
				if strings.HasPrefix(step.Uses, "actions/setup-node") && isLTSAlias(fmt.Sprint(step.With["node-version"])) {
					nodeLTS = true
				}
				cmd, _, _ := strings.Cut(strings.TrimSpace(step.Run), "\n")
				if cmd == "" || seen[cmd] || !reCheckCommand.MatchString(cmd) {
					continue
				}
				seen[cmd] = true
				commands = append(commands, cmd)
			}
		}
		if len(names) > 0 {
			c.addf(types.CatCI, "CI runs on GitHub Actions (%s); keep it green before merging.", strings.Join(names, ", "))
		}
		for i, cmd := range commands {
			if i == maxCICommands {
				break
			}
			c.addf(types.CatCI, "CI runs `%s`; run it locally before pushing.", cmd)
		}
		if nodeLTS {
			c.add(types.CatCI, LTSRule)
		}
	}

	if p.Exists(".gitlab-ci.yml") {
		c.add(types.CatCI, "CI runs on GitLab CI (.gitlab-ci.yml); keep the pipeline green before merging.")
	}
	if p.Exists(".circleci/config.yml") {
		c.add(types.CatCI, "CI runs on CircleCI (.circleci/config.yml); keep it green before merging.")
	}
	return c.rules, nil
}

// workflowSteps flattens steps across jobs in job-name order.
func workflowSteps(wf workflow) []workflowStep {
	ids := make([]string, 0, len(wf.Jobs))
	for id := range wf.Jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []workflowStep
	for _, id := range ids {
		out = append(out, wf.Jobs[id].Steps...)
	}
	return out
}
