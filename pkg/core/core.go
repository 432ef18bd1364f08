package core

import (
	"context"

	"github.com/airules/airules/internal/engine"
	"github.com/airules/airules/internal/report"
	"github.com/airules/airules/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type Config = engine.Config
type Result = engine.Result
type Rule = types.Rule
type Category = types.Category
type Mode = report.Mode

// Render modes.
const (
	Categorized = report.Categorized
	Flat        = report.Flat
)

// Markers delimiting the generated block in a rules file.
const (
	StartMarker = report.StartMarker
	EndMarker   = report.EndMarker
)

// Run is the stable entrypoint for other programs: it runs the built-in
// scanners selected by cfg against cfg.Root.
func Run(ctx context.Context, cfg Config) ([]Rule, error) {
	return engine.Run(ctx, cfg)
}

// RunWithStats is Run returning per-scanner statistics.
func RunWithStats(ctx context.Context, cfg Config) (Result, error) {
	return engine.RunWithStats(ctx, cfg)
}

// Render formats rules as Markdown.
func Render(rules []Rule, mode Mode) string { return report.Render(rules, mode) }

// Inject replaces the marker block in text with the rendered rules. It
// returns text unchanged and false when the markers are missing.
func Inject(text string, rules []Rule, mode Mode) (string, bool) {
	return report.Inject(text, rules, mode)
}

// ScannerIDs returns the built-in scanner IDs in run order.
// This is exposed for convenience to avoid importing internals directly.
func ScannerIDs() []string { return engine.ScannerIDs() }
