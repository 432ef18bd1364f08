package airules

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/airules/airules/internal/audit"
	"github.com/airules/airules/internal/cache"
	"github.com/airules/airules/internal/engine"
	"github.com/airules/airules/internal/files"
	"github.com/airules/airules/internal/git"
	"github.com/airules/airules/internal/logging"
	"github.com/airules/airules/internal/report"
)

var (
	flagPath    string
	flagMode    string
	flagOutput  string
	flagStdout  bool
	flagCheck   bool
	flagEnable  string
	flagDisable string
	flagTimeout time.Duration
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Detect conventions and write them into the rules file",
		RunE:  runGenerate,
		Example: `
# Print the rules for the current project
airules generate

# Update the marked block in AGENTS.md
airules generate --output AGENTS.md

# Fail in CI when AGENTS.md is out of date
airules generate --output AGENTS.md --check
`,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "project root to scan")
	cmd.Flags().StringVar(&flagMode, "mode", "", "render mode: categorized | flat")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "file holding the airules markers (created when missing)")
	cmd.Flags().BoolVar(&flagStdout, "stdout", false, "print the rendered rules even when --output is set")
	cmd.Flags().BoolVar(&flagCheck, "check", false, "exit 1 when --output would change; writes nothing")
	cmd.Flags().StringVar(&flagEnable, "enable", "", "only run these scanners (comma-separated IDs or globs)")
	cmd.Flags().StringVar(&flagDisable, "disable", "", "skip these scanners (comma-separated IDs or globs)")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "time limit per scanner (e.g. 10s)")
}

// outcome is what a generate pass produced.
type outcome struct {
	Result   engine.Result
	Rendered string
	Target   string // absolute output path, empty when printing only
	Created  bool   // target was created with an empty marker block
	Inject   report.InjectResult
	Stale    bool // only set in check mode
	Changes  report.Changes
}

// Failed returns the IDs of scanners whose rules were dropped.
func (o outcome) Failed() []string {
	var ids []string
	for _, st := range o.Result.Failed() {
		ids = append(ids, st.ID)
	}
	return ids
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cli := globalOverrides(flagPath)
	cli.Mode = flagMode
	cli.Output = flagOutput
	cli.Enable = flagEnable
	cli.Disable = flagDisable
	cli.Timeout = flagTimeout

	s, err := resolve(cli, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if flagCheck && s.Output == "" {
		return errors.New("--check needs an output file (--output or `output:` in config)")
	}

	out, err := generate(cmd.Context(), s, flagCheck)
	if err != nil {
		return err
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if flagCheck {
		if out.Stale {
			fmt.Fprintf(stderr, "%s is out of date; run `airules generate --output %s`\n", relTo(s.Root, out.Target), relTo(s.Root, out.Target))
			os.Exit(1)
		}
		fmt.Fprintf(stderr, "%s is up to date\n", relTo(s.Root, out.Target))
		return nil
	}

	if flagJSON {
		doc := report.NewDocument(s.Root, out.Result.Rules, s.Mode)
		doc.Failed = out.Failed()
		return report.WriteJSON(stdout, doc)
	}
	if s.Output == "" || flagStdout {
		printRendered(stdout, out.Rendered, s.NoColor)
	}
	report.PrintSummary(stderr, summaryOf(s, out), report.PrintOptions{NoColor: s.NoColor})
	return nil
}

// generate runs the scanners for s and, when an output file is configured,
// updates its marker block. In check mode nothing is written.
func generate(ctx context.Context, s settings, check bool) (outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := s.Logger.WithComponent("generate")
	var out outcome

	res, err := engine.RunWithStats(ctx, engine.Config{
		Root:            s.Root,
		Threads:         s.Threads,
		Timeout:         s.Timeout,
		EnableScanners:  s.Enable,
		DisableScanners: s.Disable,
		Logger:          s.Logger,
	})
	if err != nil {
		return out, fmt.Errorf("scan %s: %w", s.Root, err)
	}
	if n := len(res.Rules); len(s.Exclude) > 0 {
		res.Rules = report.Exclude(res.Rules, s.Exclude)
		log.Debug(ctx, "excluded rules by config", "count", n-len(res.Rules))
	}
	out.Result = res
	out.Rendered = report.Render(res.Rules, s.Mode)

	if !s.NoCache && !check {
		if prev, err := cache.LoadResults(s.Root); err == nil {
			out.Changes = report.Diff(prev.Rules, res.Rules)
			if !out.Changes.Empty() {
				log.Info(ctx, "rules changed since last run", "added", len(out.Changes.Added), "removed", len(out.Changes.Removed))
			}
		}
	}

	if s.Output != "" {
		out.Target = s.Output
		if !filepath.IsAbs(out.Target) {
			out.Target = filepath.Join(s.Root, out.Target)
		}
		if check {
			stale, err := report.Stale(out.Target, res.Rules, s.Mode)
			if errors.Is(err, fs.ErrNotExist) {
				out.Stale = true
				return out, nil
			}
			if err != nil {
				return out, err
			}
			out.Stale = stale
			return out, nil
		}
		if err := writeTarget(ctx, s, &out); err != nil {
			return out, err
		}
	}

	if !s.NoCache && !check {
		record(ctx, log, s, out)
	}
	return out, nil
}

// writeTarget creates the target when missing and injects the rules.
func writeTarget(ctx context.Context, s settings, out *outcome) error {
	log := s.Logger.WithComponent("generate")
	if _, err := os.Stat(out.Target); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(out.Target), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(out.Target), err)
		}
		if _, err := files.EnsureMarkers(out.Target, report.StartMarker, report.EndMarker); err != nil {
			return fmt.Errorf("create %s: %w", out.Target, err)
		}
		out.Created = true
	}

	rel := relTo(s.Root, out.Target)
	var db cache.DB
	if !s.NoCache {
		db, _ = cache.Load(s.Root)
		if b, err := os.ReadFile(out.Target); err == nil {
			if block, ok := report.Extract(string(b)); ok && db.EditedOutside(rel, []byte(block)) {
				log.Warn(ctx, nil, "generated block was edited by hand; the edits will be replaced", "file", rel)
			}
		}
	}

	ir, err := report.InjectFile(logging.NewContext(ctx, s.Logger), out.Target, out.Result.Rules, s.Mode)
	out.Inject = ir
	if err != nil {
		return err
	}
	if ir.Injected && !s.NoCache {
		db.Record(rel, []byte(out.Rendered))
		if err := cache.Save(s.Root, db); err != nil {
			log.Warn(ctx, err, "could not save output cache")
		}
	}
	return nil
}

// record saves the results cache and appends an audit record. Failures
// are logged; they never fail the run.
func record(ctx context.Context, log logging.Logger, s settings, out outcome) {
	failed := out.Failed()
	if err := cache.SaveResults(s.Root, out.Result.Rules, failed); err != nil {
		log.Warn(ctx, err, "could not save results cache")
	}
	target := ""
	if out.Target != "" {
		target = relTo(s.Root, out.Target)
	}
	rec := audit.CreateRunRecord(s.Root, target, string(s.Mode), out.Result.Rules, failed, out.Inject.Changed, out.Result.Duration)
	rec.Repo, rec.Commit, rec.Branch = git.RepoMetadata(s.Root)
	if err := audit.NewAuditLog(s.Root).LogRun(rec); err != nil {
		log.Warn(ctx, err, "could not append audit record")
	}
}

func summaryOf(s settings, out outcome) report.Summary {
	groups := map[string]int{}
	for _, r := range out.Result.Rules {
		groups[r.Title()]++
	}
	sum := report.Summary{
		Rules:    len(out.Result.Rules),
		Groups:   groups,
		Failed:   out.Failed(),
		Injected: out.Inject.Injected,
		Changed:  out.Inject.Changed,
		Duration: out.Result.Duration,
	}
	if out.Target != "" {
		sum.Target = relTo(s.Root, out.Target)
	}
	return sum
}

// printRendered writes the markdown, highlighted when w is a terminal.
func printRendered(w io.Writer, rendered string, noColor bool) {
	if rendered == "" {
		return
	}
	if !noColor && isTerminal(w) {
		fmt.Fprint(w, report.Highlight(rendered))
		return
	}
	fmt.Fprint(w, rendered)
}
