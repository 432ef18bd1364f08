package airules

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/airules/airules/internal/cache"
	"github.com/airules/airules/internal/report"
)

func init() {
	var path, mode string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render the rules from the last generate run without scanning",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli := globalOverrides(path)
			cli.Mode = mode
			s, err := resolve(cli, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			res, err := cache.LoadResults(s.Root)
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("no cached results in %s; run `airules generate` first", s.Root)
			}
			if err != nil {
				return fmt.Errorf("load cached results: %w", err)
			}
			if flagJSON {
				doc := report.NewDocument(res.Root, res.Rules, s.Mode)
				doc.Generated = res.Timestamp
				doc.Failed = res.Failed
				return report.WriteJSON(cmd.OutOrStdout(), doc)
			}
			printRendered(cmd.OutOrStdout(), report.Render(res.Rules, s.Mode), s.NoColor)
			fmt.Fprintf(cmd.ErrOrStderr(), "%d rules from %s\n", res.Count, res.Timestamp.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().StringVarP(&path, "path", "p", ".", "project root")
	cmd.Flags().StringVar(&mode, "mode", "", "render mode: categorized | flat")
}
