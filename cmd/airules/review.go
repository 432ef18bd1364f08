package airules

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/airules/airules/internal/engine"
	"github.com/airules/airules/internal/report"
	"github.com/airules/airules/internal/tui"
	"github.com/airules/airules/internal/types"
)

func init() {
	var path, output, mode string
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Browse detected rules interactively and choose which to write",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(cmd.OutOrStdout()) {
				return errors.New("review needs an interactive terminal; use `airules generate` instead")
			}
			cli := globalOverrides(path)
			cli.Output = output
			cli.Mode = mode
			s, err := resolve(cli, io.Discard)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			scan := func() ([]types.Rule, error) {
				res, err := engine.RunWithStats(ctx, engine.Config{
					Root:            s.Root,
					Threads:         s.Threads,
					Timeout:         s.Timeout,
					EnableScanners:  s.Enable,
					DisableScanners: s.Disable,
					Logger:          s.Logger,
				})
				if err != nil {
					return nil, err
				}
				return report.Exclude(res.Rules, s.Exclude), nil
			}
			rules, err := scan()
			if err != nil {
				return err
			}

			var write tui.WriteFunc
			if s.Output != "" {
				write = func(kept []types.Rule, mode report.Mode) (string, error) {
					return writeReviewed(ctx, s, kept, mode)
				}
			}

			prefs := tui.LoadPrefs()
			if mode != "" {
				prefs.Mode = s.Mode
			}
			final, err := tui.Run(tui.NewModel(rules, prefs, scan, write))
			if err != nil {
				return err
			}
			return printExclusions(cmd.OutOrStdout(), final.Excluded())
		},
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().StringVarP(&path, "path", "p", ".", "project root")
	cmd.Flags().StringVar(&mode, "mode", "", "initial render mode (default: last used)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "rules file written with w (default `output:` from config)")
}

// writeReviewed writes the kept rules to the configured target.
func writeReviewed(ctx context.Context, s settings, kept []types.Rule, mode report.Mode) (string, error) {
	s.Mode = mode
	out := outcome{Result: engine.Result{Rules: kept}, Rendered: report.Render(kept, mode)}
	out.Target = s.Output
	if !filepath.IsAbs(out.Target) {
		out.Target = filepath.Join(s.Root, out.Target)
	}
	if err := writeTarget(ctx, s, &out); err != nil {
		return "", err
	}
	if !out.Inject.Injected {
		return "", fmt.Errorf("%s: %w", relTo(s.Root, out.Target), report.ErrMarkersNotFound)
	}
	if !out.Inject.Changed {
		return "unchanged: " + relTo(s.Root, out.Target), nil
	}
	return "updated: " + relTo(s.Root, out.Target), nil
}

// printExclusions prints a config snippet that keeps excluded rules out of
// future runs.
func printExclusions(w io.Writer, excluded []types.Rule) error {
	if len(excluded) == 0 {
		return nil
	}
	texts := make([]string, len(excluded))
	for i, r := range excluded {
		texts[i] = r.Text
	}
	b, err := yaml.Marshal(map[string][]string{"exclude_rules": texts})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Add this to .airules.yml to keep the excluded rules out of `airules generate`:")
	fmt.Fprintln(w)
	_, err = w.Write(b)
	return err
}
