package factory

import (
	"fmt"

	"github.com/airules/airules/internal/detectors"
	"github.com/airules/airules/internal/scanner"
)

// Config is the subset of configuration needed to build the scanner registry.
type Config struct {
	// Enable and Disable are comma-separated scanner IDs or glob patterns.
	Enable  string
	Disable string
}

// New builds the registry of built-in scanners, filtered by cfg.
func New(cfg Config) (*scanner.Registry, error) {
	reg, err := scanner.NewRegistry(detectors.Default()...)
	if err != nil {
		return nil, fmt.Errorf("failed to register built-in scanners: %w", err)
	}
	return reg.Filter(cfg.Enable, cfg.Disable), nil
}

// DefaultIDs returns the built-in scanner IDs in registration order.
// This is used for help output and listings without running anything.
func DefaultIDs() []string {
	ss := detectors.Default()
	ids := make([]string, len(ss))
	for i, s := range ss {
		ids[i] = s.ID()
	}
	return ids
}
