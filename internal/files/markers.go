package files

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// EnsureMarkers makes sure path contains the start and end marker lines.
// A missing file is created holding only the markers; a file with both
// markers is left alone; otherwise the pair is appended on fresh lines.
// It reports whether the file was changed. Idempotent.
func EnsureMarkers(path, start, end string) (bool, error) {
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return true, WriteFileAtomic(path, []byte(start+"\n"+end+"\n"), 0o644)
	case err != nil:
		return false, err
	}
	s := string(b)
	if i := strings.Index(s, start); i >= 0 && strings.Contains(s[i+len(start):], end) {
		return false, nil
	}
	var sb strings.Builder
	sb.WriteString(s)
	if s != "" && !strings.HasSuffix(s, "\n") {
		sb.WriteByte('\n')
	}
	if s != "" {
		sb.WriteByte('\n')
	}
	sb.WriteString(start + "\n" + end + "\n")
	return true, WriteFileAtomic(path, []byte(sb.String()), 0o644)
}

// AppendIgnore ensures the given pattern is present in .gitignore at repoRoot.
// It creates the file if missing and appends a newline if needed. Idempotent.
func AppendIgnore(repoRoot, pattern string) error {
	path := filepath.Join(repoRoot, ".gitignore")
	existing := map[string]bool{}
	endsWithNewline := true
	if b, err := os.ReadFile(path); err == nil {
		sc := bufio.NewScanner(strings.NewReader(string(b)))
		for sc.Scan() {
			existing[strings.TrimSpace(sc.Text())] = true
		}
		endsWithNewline = len(b) == 0 || b[len(b)-1] == '\n'
	}
	if existing[pattern] {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	line := pattern + "\n"
	if !endsWithNewline {
		line = "\n" + line
	}
	_, err = f.WriteString(line)
	return err
}
