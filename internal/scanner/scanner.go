package scanner

import (
	"context"

	"github.com/airules/airules/internal/logging"
	"github.com/airules/airules/internal/types"
)

// Scanner detects one family of project conventions and turns them into
// rules. Implementations are read-only and idempotent: scanning an
// unchanged project twice yields equal results.
type Scanner interface {
	// ID is the stable identifier used for enable/disable lists.
	ID() string

	// Description is a one-line summary for listings.
	Description() string

	// Scan inspects the project at root. Absence of the scanner's target
	// configuration is not an error and yields no rules. Recoverable I/O
	// problems are logged and degrade to partial results.
	Scan(ctx context.Context, root string) ([]types.Rule, error)
}

// Func is the body of a scanner built with New. It receives a Project
// opened for this scan only.
type Func func(ctx context.Context, p *Project) ([]types.Rule, error)

type funcScanner struct {
	id   string
	desc string
	fn   Func
}

// New adapts fn into a Scanner.
func New(id, desc string, fn Func) Scanner {
	return &funcScanner{id: id, desc: desc, fn: fn}
}

func (s *funcScanner) ID() string          { return s.id }
func (s *funcScanner) Description() string { return s.desc }

// Scan implements Scanner.
func (s *funcScanner) Scan(ctx context.Context, root string) ([]types.Rule, error) {
	log := logging.FromContext(ctx).With("scanner", s.id)
	return s.fn(ctx, Open(root, log))
}
