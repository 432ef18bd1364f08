// Package core provides a small, stable facade over airules' internal
// engine for external integrations, so tools can depend on a stable import
// path without reaching into internal packages.
//
// Example:
//
//	rules, err := core.Run(ctx, core.Config{Root: "."})
//	if err != nil { /* handle */ }
//	fmt.Print(core.Render(rules, core.Categorized))
package core
