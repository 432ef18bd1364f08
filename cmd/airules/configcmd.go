package airules

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/airules/airules/internal/config"
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	var output string
	var global bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented .airules.yml starter file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := output
			if global {
				p, err := config.GlobalPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := config.WriteStarter(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
			return nil
		},
	}
	cfgCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&output, "output", config.LocalNames[0], "output file path")
	initCmd.Flags().BoolVar(&global, "global", false, "write the user-wide config instead")

	var path string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings after merging flags and config files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := resolve(globalOverrides(path), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "root:      %s\n", s.Root)
			fmt.Fprintf(w, "mode:      %s\n", s.Mode)
			fmt.Fprintf(w, "output:    %s\n", s.Output)
			fmt.Fprintf(w, "enable:    %s\n", s.Enable)
			fmt.Fprintf(w, "disable:   %s\n", s.Disable)
			fmt.Fprintf(w, "threads:   %d\n", s.Threads)
			fmt.Fprintf(w, "timeout:   %s\n", s.Timeout)
			fmt.Fprintf(w, "no_color:  %t\n", s.NoColor)
			fmt.Fprintf(w, "no_cache:  %t\n", s.NoCache)
			fmt.Fprintf(w, "debounce:  %s\n", s.Watch.GetDebounce())
			if gp, err := config.GlobalPath(); err == nil {
				fmt.Fprintf(w, "global:    %s\n", filepath.ToSlash(gp))
			}
			return nil
		},
	}
	cfgCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&path, "path", "p", ".", "project root")
}
