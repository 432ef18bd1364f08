package airules

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/airules/airules/internal/audit"
	"github.com/airules/airules/internal/report"
)

func init() {
	var path string
	var remove int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past generate runs recorded in the audit log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := resolve(globalOverrides(path), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			log := audit.NewAuditLog(s.Root)
			if remove >= 0 {
				if err := log.DeleteRecord(remove); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted record %d\n", remove)
				return nil
			}
			records, err := log.LoadHistory()
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("read %s: %w", log.Path(), err)
			}
			if flagJSON {
				if records == nil {
					records = []audit.RunRecord{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			return report.PrintHistory(cmd.OutOrStdout(), records)
		},
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().StringVarP(&path, "path", "p", ".", "project root")
	cmd.Flags().IntVar(&remove, "delete", -1, "delete the record with this index (as listed, newest first)")
}
