package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/airules/airules/internal/audit"
)

// PrintOptions controls human-readable output.
type PrintOptions struct {
	NoColor bool
}

// ScannerRow is one line of the scanners listing.
type ScannerRow struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// PrintScanners renders the registered scanners as a table.
func PrintScanners(w io.Writer, rows []ScannerRow) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Enabled", "Description")
	for _, r := range rows {
		enabled := "no"
		if r.Enabled {
			enabled = "yes"
		}
		if err := table.Append([]string{r.ID, enabled, r.Description}); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintHistory renders audit records, newest first, as a table. Rows are
// numbered so a record can be addressed by index.
func PrintHistory(w io.Writer, records []audit.RunRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded yet.")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header("#", "When", "Target", "Mode", "Rules", "Changed", "Failed", "Duration")
	for i, r := range records {
		target := r.Target
		if target == "" {
			target = "(stdout)"
		}
		changed := ""
		if r.Changed {
			changed = "yes"
		}
		row := []string{
			strconv.Itoa(i),
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			target,
			r.Mode,
			strconv.Itoa(r.TotalRules),
			changed,
			strings.Join(r.FailedScanners, ","),
			r.Duration,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// Summary describes a finished generate run.
type Summary struct {
	Rules    int
	Groups   map[string]int // rule count per display title
	Failed   []string
	Target   string
	Injected bool
	Changed  bool
	Duration time.Duration
}

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	titleColor = color.New(color.FgCyan)
)

// PrintSummary writes a short human summary of a run.
func PrintSummary(w io.Writer, s Summary, opts PrintOptions) {
	paint := func(c *color.Color, format string, args ...any) string {
		if opts.NoColor {
			return fmt.Sprintf(format, args...)
		}
		return c.Sprintf(format, args...)
	}

	if s.Rules == 0 {
		fmt.Fprintln(w, paint(warnColor, "No conventions detected."))
	} else {
		fmt.Fprintf(w, "%s from %d categories\n", paint(okColor, "%d rules", s.Rules), len(s.Groups))
		titles := make([]string, 0, len(s.Groups))
		for t := range s.Groups {
			titles = append(titles, t)
		}
		sort.Strings(titles)
		for _, t := range titles {
			fmt.Fprintf(w, "  %s %d\n", paint(titleColor, "%-24s", t), s.Groups[t])
		}
	}

	switch {
	case s.Target == "":
	case !s.Injected:
		fmt.Fprintf(w, "%s %s has no airules markers; run `airules init` first\n", paint(warnColor, "skipped:"), s.Target)
	case s.Changed:
		fmt.Fprintf(w, "%s %s\n", paint(okColor, "updated:"), s.Target)
	default:
		fmt.Fprintf(w, "unchanged: %s\n", s.Target)
	}
	if len(s.Failed) > 0 {
		fmt.Fprintf(w, "%s %s\n", paint(warnColor, "scanners failed:"), strings.Join(s.Failed, ", "))
	}
	if s.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", s.Duration.Seconds())
	}
}
