package detectors

import (
	"context"

	"github.com/BurntSushi/toml"

	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/types"
)

type cargoManifest struct {
	Package *struct {
		Name        string `toml:"name"`
		Edition     string `toml:"edition"`
		RustVersion string `toml:"rust-version"`
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
	Dependencies map[string]toml.Primitive `toml:"dependencies"`
}

var crates = []struct {
	name string
	cat  types.Category
	text string
}{
	{"tokio", types.CatFramework, "Write async code on the Tokio runtime; do not block inside async functions."},
	{"axum", types.CatFramework, "Build HTTP handlers with axum extractors and routers."},
	{"clap", types.CatFramework, "Define CLI arguments with clap's derive API."},
	{"serde", types.CatLanguage, "Derive serde Serialize/Deserialize for data types instead of hand-written conversions."},
	{"anyhow", types.CatLanguage, "Propagate application errors with anyhow::Result and the ? operator."},
	{"thiserror", types.CatLanguage, "Define library error types with thiserror."},
}

// Rust reports edition, toolchain floor, workspace layout and notable crates
// from Cargo.toml.
func Rust() scanner.Scanner {
	return scanner.New("rust",
		"Rust edition, rust-version, workspace and crates from Cargo.toml",
		scanRust)
}

func scanRust(ctx context.Context, p *scanner.Project) ([]types.Rule, error) {
	b, ok := readOptional(ctx, p, "Cargo.toml")
	if !ok {
		return nil, nil
	}
	var c collector
	var m cargoManifest
	if _, err := toml.Decode(string(b), &m); err != nil {
		p.Logger().Warn(ctx, err, "unreadable Cargo.toml")
		c.add(types.CatLanguage, "This is a Rust project built with Cargo.")
		return c.rules, nil
	}

	if m.Package != nil {
		if m.Package.Edition != "" {
			c.addf(types.CatLanguage, "Write Rust %s edition code.", m.Package.Edition)
		}
		if m.Package.RustVersion != "" {
			c.addf(types.CatLanguage, "Keep the code compiling on Rust %s (rust-version in Cargo.toml).", m.Package.RustVersion)
		}
	}
	if m.Workspace != nil {
		c.addf(types.CatMonorepo, "This is a Cargo workspace with %d members; run cargo commands from the root.", len(m.Workspace.Members))
	}
	for _, cr := range crates {
		if _, ok := m.Dependencies[cr.name]; ok {
			c.add(cr.cat, cr.text)
		}
	}
	if len(c.rules) == 0 {
		c.add(types.CatLanguage, "This is a Rust project built with Cargo.")
	}
	c.add(types.CatLinting, "Keep `cargo clippy` and `cargo fmt --check` clean.")
	return c.rules, nil
}
