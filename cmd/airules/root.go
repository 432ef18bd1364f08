package airules

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagThreads   int
	flagNoColor   bool
	flagNoCache   bool
	flagLogLevel  string
	flagLogFormat string

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the airules CLI.
var rootCmd = &cobra.Command{
	Use:           "airules",
	Short:         "Generate AI assistant rules from project conventions",
	Long:          "airules inspects manifests, tool configs and git history and writes the conventions it finds into a marked block of an instructions file such as AGENTS.md.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the airules CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "concurrent scanners (0 = GOMAXPROCS, 1 = sequential)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "do not read or write the results cache and audit log")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug | info | warn | error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "text | json")
}
