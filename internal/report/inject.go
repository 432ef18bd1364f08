package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/airules/airules/internal/files"
	"github.com/airules/airules/internal/logging"
	"github.com/airules/airules/internal/types"
)

// Sentinel markers delimiting the generated block. They are matched verbatim.
const (
	StartMarker = "<!-- airules:start -->"
	EndMarker   = "<!-- airules:end -->"
)

// ErrMarkersNotFound reports a target without a start marker followed by an
// end marker.
var ErrMarkersNotFound = errors.New("airules markers not found")

// Inject replaces the text between the end of StartMarker and the first
// EndMarker after it with a newline and the rendered rules. Everything
// outside that span is kept byte for byte. When either marker is missing,
// or the only end marker precedes the start marker, text is returned
// unchanged with false.
func Inject(text string, rules []types.Rule, mode Mode) (string, bool) {
	return InjectRendered(text, Render(rules, mode))
}

// InjectRendered is Inject with an already rendered block.
func InjectRendered(text, rendered string) (string, bool) {
	i := strings.Index(text, StartMarker)
	if i < 0 {
		return text, false
	}
	from := i + len(StartMarker)
	j := strings.Index(text[from:], EndMarker)
	if j < 0 {
		return text, false
	}
	return text[:from] + "\n" + rendered + text[from+j:], true
}

// Extract returns the current content between the markers, without the
// leading newline Inject adds.
func Extract(text string) (string, bool) {
	i := strings.Index(text, StartMarker)
	if i < 0 {
		return "", false
	}
	from := i + len(StartMarker)
	j := strings.Index(text[from:], EndMarker)
	if j < 0 {
		return "", false
	}
	return strings.TrimPrefix(text[from:from+j], "\n"), true
}

// Block returns rendered wrapped in the markers, as written to a new file.
func Block(rendered string) string {
	return StartMarker + "\n" + rendered + EndMarker + "\n"
}

// InjectResult describes the outcome of InjectFile.
type InjectResult struct {
	Path     string
	Injected bool   // markers found and block replaced in memory
	Changed  bool   // file content differed and was rewritten
	Hash     uint64 // xxhash of the file content after the call
}

// InjectFile reads path, injects the rendered rules and writes the file
// back atomically when its content changed. Missing markers are logged as
// a warning and leave the file untouched; they are not an error.
func InjectFile(ctx context.Context, path string, rules []types.Rule, mode Mode) (InjectResult, error) {
	res := InjectResult{Path: path}
	log := logging.FromContext(ctx)

	b, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}
	res.Hash = xxhash.Sum64(b)

	out, ok := Inject(string(b), rules, mode)
	if !ok {
		log.Warn(ctx, ErrMarkersNotFound, "file left unchanged", "file", path, "start", StartMarker, "end", EndMarker)
		return res, nil
	}
	res.Injected = true

	next := xxhash.Sum64String(out)
	if next == res.Hash && len(out) == len(b) {
		log.Debug(ctx, "rules block already up to date", "file", path)
		return res, nil
	}
	if err := files.WriteFileAtomic(path, []byte(out), 0o644); err != nil {
		return res, fmt.Errorf("write %s: %w", path, err)
	}
	res.Changed = true
	res.Hash = next
	log.Info(ctx, "rules block updated", "file", path, "rules", len(rules), "mode", string(mode))
	return res, nil
}

// WriteFile replaces path with a fresh marker block holding the rules.
func WriteFile(path string, rules []types.Rule, mode Mode) error {
	if err := files.WriteFileAtomic(path, []byte(Block(Render(rules, mode))), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Stale reports whether injecting rules into path would change it. A file
// without markers yields ErrMarkersNotFound.
func Stale(path string, rules []types.Rule, mode Mode) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	out, ok := Inject(string(b), rules, mode)
	if !ok {
		return false, fmt.Errorf("%s: %w", path, ErrMarkersNotFound)
	}
	return out != string(b), nil
}
