package airules

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/airules/airules/internal/files"
	"github.com/airules/airules/internal/report"
)

// DefaultOutput is the rules file used when neither flags nor config name one.
const DefaultOutput = "AGENTS.md"

// cacheFiles are written to the project root when it has no .git directory.
var cacheFiles = []string{".airulescache.json", ".airules_last_run.json", ".airules_audit.jsonl"}

func init() {
	var path, output string
	var gitignore bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Add the airules marker block to the rules file",
		Long:  "init makes sure the rules file contains the " + report.StartMarker + " / " + report.EndMarker + " pair. Existing content is kept; the file is created when missing.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := resolve(overrides{Path: path, Output: output}, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			target := s.Output
			if target == "" {
				target = DefaultOutput
			}
			if !filepath.IsAbs(target) {
				target = filepath.Join(s.Root, target)
			}
			changed, err := files.EnsureMarkers(target, report.StartMarker, report.EndMarker)
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintln(cmd.OutOrStdout(), "Added airules markers to", relTo(s.Root, target))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), relTo(s.Root, target), "already has airules markers")
			}
			if gitignore {
				for _, name := range cacheFiles {
					if err := files.AppendIgnore(s.Root, name); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&path, "path", "p", ".", "project root")
	cmd.Flags().StringVarP(&output, "output", "o", "", "rules file (default "+DefaultOutput+" or `output:` from config)")
	cmd.Flags().BoolVar(&gitignore, "gitignore", false, "also add airules cache files to .gitignore")
}
