package airules

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/airules/airules/internal/logging"
	"github.com/airules/airules/internal/report"
)

// watchPatterns are the project files scanners read, relative to the root.
var watchPatterns = []string{
	"package.json",
	"*lock*.{json,yaml}", "*.lock", "*.lockb",
	".nvmrc", ".node-version",
	"tsconfig*.json",
	".prettierrc*", "prettier.config.*",
	".eslintrc*", "eslint.config.*", "biome.json*",
	"{vitest,jest,playwright,cypress}.config.*", "pytest.ini",
	"go.mod", "go.work",
	"Cargo.toml",
	"pyproject.toml", "requirements*.txt", "Pipfile",
	"pnpm-workspace.yaml", "turbo.json", "nx.json", "lerna.json",
	"commitlint.config.*", ".commitlintrc*", ".lintstagedrc*", ".husky/*",
	".github/workflows/*.{yml,yaml}", ".gitlab-ci.yml", ".circleci/config.yml",
	".airulesignore", ".airules.{yml,yaml}", "airules.{yml,yaml}",
}

// watchDirs are the directories holding watchPatterns files. Missing ones
// are skipped.
var watchDirs = []string{".", ".github/workflows", ".husky", ".circleci"}

// projectWatcher re-runs a callback after relevant files settle.
type projectWatcher struct {
	root     string
	debounce time.Duration
	extra    []string        // slash paths relative to root
	skip     map[string]bool // slash paths that never trigger, e.g. the output file
	log      logging.Logger
	run      func(context.Context)
}

// matches reports whether a change to rel should trigger a run.
func (w *projectWatcher) matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	if w.skip[rel] {
		return false
	}
	for _, p := range w.extra {
		if p == rel {
			return true
		}
	}
	for _, p := range watchPatterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (w *projectWatcher) dirs() []string {
	seen := map[string]bool{}
	var out []string
	add := func(rel string) {
		d := filepath.Join(w.root, filepath.FromSlash(rel))
		if seen[d] {
			return
		}
		if st, err := os.Stat(d); err != nil || !st.IsDir() {
			return
		}
		seen[d] = true
		out = append(out, d)
	}
	for _, d := range watchDirs {
		add(d)
	}
	for _, p := range w.extra {
		add(filepath.ToSlash(filepath.Dir(filepath.FromSlash(p))))
	}
	return out
}

// Run blocks until ctx is done. Runs are serialized on the calling
// goroutine; the debounce timer only signals.
func (w *projectWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init: %w", err)
	}
	defer fw.Close()

	for _, d := range w.dirs() {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	trigger := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			rel := relTo(w.root, ev.Name)
			if !w.matches(rel) {
				continue
			}
			w.log.Debug(ctx, "change detected", "file", rel, "op", ev.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case <-trigger:
			w.run(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn(ctx, err, "watch error")
		}
	}
}

func init() {
	var path, output string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the rules file whenever project manifests change",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli := globalOverrides(path)
			cli.Output = output
			s, err := resolve(cli, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if s.Output == "" {
				s.Output = DefaultOutput
			}
			target := s.Output
			if !filepath.IsAbs(target) {
				target = filepath.Join(s.Root, target)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stderr := cmd.ErrOrStderr()
			regenerate := func(ctx context.Context) {
				out, err := generate(ctx, s, false)
				if err != nil {
					s.Logger.Error(ctx, err, "generate failed")
					return
				}
				report.PrintSummary(stderr, summaryOf(s, out), report.PrintOptions{NoColor: s.NoColor})
			}
			regenerate(ctx)

			w := &projectWatcher{
				root:     s.Root,
				debounce: s.Watch.GetDebounce(),
				extra:    s.Watch.Paths,
				skip:     map[string]bool{relTo(s.Root, target): true},
				log:      s.Logger.WithComponent("watch"),
				run:      regenerate,
			}
			fmt.Fprintf(stderr, "Watching %s (Ctrl+C to stop)\n", s.Root)
			return w.Run(ctx)
		},
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().StringVarP(&path, "path", "p", ".", "project root")
	cmd.Flags().StringVarP(&output, "output", "o", "", "rules file (default "+DefaultOutput+" or `output:` from config)")
}
