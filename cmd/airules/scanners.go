package airules

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airules/airules/internal/detectors"
	"github.com/airules/airules/internal/report"
	"github.com/airules/airules/internal/scanner"
)

func init() {
	var path string
	cmd := &cobra.Command{
		Use:   "scanners",
		Short: "List built-in scanners and whether the current config enables them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := resolve(globalOverrides(path), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rows, footer, err := scannerRows(s.Enable, s.Disable)
			if err != nil {
				return err
			}
			if flagJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			if err := report.PrintScanners(cmd.OutOrStdout(), rows); err != nil {
				return fmt.Errorf("print scanners: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), footer)
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().StringVarP(&path, "path", "p", ".", "project root whose config decides enable/disable")
}

// scannerRows lists the built-in scanners and marks those the enable and
// disable lists keep.
func scannerRows(enable, disable string) ([]report.ScannerRow, string, error) {
	all, err := scanner.NewRegistry(detectors.Default()...)
	if err != nil {
		return nil, "", err
	}
	kept := all.Filter(enable, disable)
	enabled := map[string]bool{}
	for _, id := range kept.IDs() {
		enabled[id] = true
	}
	rows := make([]report.ScannerRow, 0, all.Len())
	for _, sc := range all.Scanners() {
		rows = append(rows, report.ScannerRow{ID: sc.ID(), Description: sc.Description(), Enabled: enabled[sc.ID()]})
	}
	return rows, fmt.Sprintf("%d of %d scanners enabled", kept.Len(), all.Len()), nil
}
