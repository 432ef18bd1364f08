package scanner

import (
	"errors"
	"fmt"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// ErrDuplicateID is returned when two scanners share an ID.
var ErrDuplicateID = errors.New("duplicate scanner id")

// Registry is an ordered set of scanners. Registration order is the order
// in which results are concatenated.
type Registry struct {
	scanners []Scanner
	ids      map[string]bool
}

// NewRegistry registers ss in order.
func NewRegistry(ss ...Scanner) (*Registry, error) {
	r := &Registry{ids: map[string]bool{}}
	for _, s := range ss {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends s.
func (r *Registry) Register(s Scanner) error {
	if r.ids == nil {
		r.ids = map[string]bool{}
	}
	if s == nil {
		return errors.New("nil scanner")
	}
	if r.ids[s.ID()] {
		return fmt.Errorf("%w: %s", ErrDuplicateID, s.ID())
	}
	r.ids[s.ID()] = true
	r.scanners = append(r.scanners, s)
	return nil
}

// Scanners returns the registered scanners in order.
func (r *Registry) Scanners() []Scanner {
	out := make([]Scanner, len(r.scanners))
	copy(out, r.scanners)
	return out
}

// IDs returns scanner IDs in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.scanners))
	for i, s := range r.scanners {
		out[i] = s.ID()
	}
	return out
}

// Len returns the number of registered scanners.
func (r *Registry) Len() int { return len(r.scanners) }

// Filter returns a registry restricted by comma-separated enable and
// disable lists. Entries may be doublestar patterns ("py*"). An empty
// enable list keeps everything; disable is applied last. Order is kept.
func (r *Registry) Filter(enable, disable string) *Registry {
	allow := parseIDList(enable)
	block := parseIDList(disable)
	out := &Registry{ids: map[string]bool{}}
	for _, s := range r.scanners {
		if len(allow) > 0 && !matchAnyID(s.ID(), allow) {
			continue
		}
		if len(block) > 0 && matchAnyID(s.ID(), block) {
			continue
		}
		out.ids[s.ID()] = true
		out.scanners = append(out.scanners, s)
	}
	return out
}

func parseIDList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func matchAnyID(id string, patterns []string) bool {
	for _, p := range patterns {
		if p == id {
			return true
		}
		if ok, _ := doublestar.Match(p, id); ok {
			return true
		}
	}
	return false
}
