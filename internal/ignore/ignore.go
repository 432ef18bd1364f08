// Package ignore implements a small gitignore-like matcher for
// .airulesignore files. Supported syntax: comments (#), blank lines,
// directory patterns with a trailing slash, anchored patterns with a leading
// slash and doublestar globs.
package ignore

import (
	"bufio"
	"os"
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the per-project ignore file.
const FileName = ".airulesignore"

type pattern struct {
	glob     string
	dirOnly  bool
	anchored bool
}

// Matcher reports whether a slash-separated relative path is ignored.
type Matcher struct {
	patterns []pattern
}

// Load parses an ignore file. A missing file yields an empty matcher and
// the open error.
func Load(p string) (Matcher, error) {
	f, err := os.Open(p)
	if err != nil {
		return Matcher{}, err
	}
	defer f.Close()
	var m Matcher
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m.Add(sc.Text())
	}
	return m, sc.Err()
}

// Add appends one pattern line.
func (m *Matcher) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	p := pattern{}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = strings.TrimPrefix(line, "/")
	} else if strings.Contains(line, "/") {
		p.anchored = true
	}
	p.glob = line
	m.patterns = append(m.patterns, p)
}

// Match reports whether the file rel (or one of its parent directories) is
// ignored.
func (m Matcher) Match(rel string) bool {
	return m.match(rel, false)
}

// MatchDir is Match for a directory path, so directory-only patterns apply
// to rel itself.
func (m Matcher) MatchDir(rel string) bool {
	return m.match(rel, true)
}

func (m Matcher) match(rel string, dir bool) bool {
	rel = strings.TrimSuffix(strings.TrimPrefix(strings.ReplaceAll(rel, "\\", "/"), "./"), "/")
	if rel == "" || len(m.patterns) == 0 {
		return false
	}
	segs := strings.Split(rel, "/")
	for _, p := range m.patterns {
		for i := range segs {
			prefix := strings.Join(segs[:i+1], "/")
			isLeaf := i == len(segs)-1 && !dir
			if p.dirOnly && isLeaf {
				continue
			}
			if p.matches(prefix) {
				return true
			}
		}
	}
	return false
}

func (p pattern) matches(prefix string) bool {
	if p.anchored {
		ok, _ := doublestar.Match(p.glob, prefix)
		return ok
	}
	ok, _ := doublestar.Match(p.glob, path.Base(prefix))
	return ok
}
