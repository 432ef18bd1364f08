package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/airules/airules/internal/logging"
	"github.com/airules/airules/internal/scanner"
	"github.com/airules/airules/internal/scanner/factory"
	"github.com/airules/airules/internal/types"
)

// ErrScannerPanic wraps a panic recovered from a scanner.
var ErrScannerPanic = errors.New("scanner panicked")

// Config controls which scanners run and how.
type Config struct {
	Root            string
	Threads         int           // 0 = GOMAXPROCS, 1 = sequential
	Timeout         time.Duration // per scanner, 0 = none
	EnableScanners  string        // comma-separated IDs or patterns
	DisableScanners string
	Logger          logging.Logger
}

// Stat describes one scanner invocation.
type Stat struct {
	ID       string
	Rules    int
	Duration time.Duration
	Err      error
}

// Result contains the combined rules and per-scanner statistics, both in
// registration order.
type Result struct {
	Rules    []types.Rule
	Duration time.Duration
	Scanners []Stat
}

// Failed returns the stats of scanners whose contribution was dropped.
func (r Result) Failed() []Stat {
	var out []Stat
	for _, s := range r.Scanners {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Engine runs a registry of scanners with fault isolation.
type Engine struct {
	reg     *scanner.Registry
	threads int
	timeout time.Duration
	log     logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithThreads bounds concurrent scanners (0 = GOMAXPROCS, 1 = sequential).
func WithThreads(n int) Option { return func(e *Engine) { e.threads = n } }

// WithTimeout time-boxes each scanner; a timeout counts as a failure.
// The engine stops waiting when the deadline passes, but a scanner that
// ignores its context keeps its goroutine until Scan returns, so long-lived
// callers such as the watch loop need scanners that honour ctx.
func WithTimeout(d time.Duration) Option { return func(e *Engine) { e.timeout = d } }

// WithLogger sets the logger handed to scanners.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an Engine over reg.
func New(reg *scanner.Registry, opts ...Option) *Engine {
	e := &Engine{reg: reg, log: logging.Discard()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Run runs all scanners against root and returns their rules concatenated
// in registration order.
func (e *Engine) Run(ctx context.Context, root string) ([]types.Rule, error) {
	res, err := e.RunWithStats(ctx, root)
	if err != nil {
		return nil, err
	}
	return res.Rules, nil
}

// RunWithStats is Run with timing and per-scanner outcomes. Scanner
// failures never abort the run; only an unusable root or a cancelled
// context is returned as an error.
func (e *Engine) RunWithStats(ctx context.Context, root string) (Result, error) {
	var result Result
	if err := checkRoot(root); err != nil {
		return result, err
	}
	started := time.Now()
	scanners := e.reg.Scanners()
	results := make([][]types.Rule, len(scanners))
	stats := make([]Stat, len(scanners))

	threads := e.threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	if len(scanners) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(threads, len(scanners)))
		for i, s := range scanners {
			i, s := i, s
			g.Go(func() error {
				// index i is owned by this goroutine
				results[i], stats[i] = e.runOne(gctx, root, s)
				return nil
			})
		}
		_ = g.Wait()
	}

	for i, rules := range results {
		for _, r := range rules {
			if !r.Valid() {
				e.log.Debug(ctx, "dropping rule with empty text", "scanner", stats[i].ID)
				continue
			}
			result.Rules = append(result.Rules, r)
		}
	}
	result.Scanners = stats
	result.Duration = time.Since(started)
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

type outcome struct {
	rules []types.Rule
	err   error
}

func (e *Engine) runOne(ctx context.Context, root string, s scanner.Scanner) ([]types.Rule, Stat) {
	st := Stat{ID: s.ID()}
	started := time.Now()
	sctx := logging.NewContext(ctx, e.log)
	if e.timeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(sctx, e.timeout)
		defer cancel()
	}

	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("%w: %v", ErrScannerPanic, r)}
			}
		}()
		rules, err := s.Scan(sctx, root)
		ch <- outcome{rules: rules, err: err}
	}()

	var out outcome
	select {
	case out = <-ch:
	case <-sctx.Done():
		select {
		case out = <-ch:
		default:
			out = outcome{err: fmt.Errorf("scanner %s: %w", s.ID(), sctx.Err())}
		}
	}

	st.Duration = time.Since(started)
	if out.err != nil {
		st.Err = out.err
		e.log.Warn(ctx, out.err, "scanner failed; its rules are skipped", "scanner", s.ID())
		return nil, st
	}
	st.Rules = len(out.rules)
	e.log.Debug(ctx, "scanner finished", "scanner", s.ID(), "rules", st.Rules, "duration", st.Duration)
	return out.rules, st
}

func checkRoot(root string) error {
	st, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("project root: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("project root %s is not a directory", root)
	}
	return nil
}

// Run builds the default scanner registry filtered by cfg and runs it.
func Run(ctx context.Context, cfg Config) ([]types.Rule, error) {
	res, err := RunWithStats(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return res.Rules, nil
}

// RunWithStats is Run returning statistics.
func RunWithStats(ctx context.Context, cfg Config) (Result, error) {
	reg, err := factory.New(factory.Config{
		Enable:  cfg.EnableScanners,
		Disable: cfg.DisableScanners,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to initialize scanners: %w", err)
	}
	e := New(reg, WithThreads(cfg.Threads), WithTimeout(cfg.Timeout), WithLogger(cfg.Logger))
	return e.RunWithStats(ctx, cfg.Root)
}

// ScannerIDs returns the IDs of the built-in scanners in run order.
func ScannerIDs() []string {
	return factory.DefaultIDs()
}
