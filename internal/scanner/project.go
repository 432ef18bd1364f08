package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	doublestar "github.com/bmatcuk/doublestar/v4"

	"github.com/airules/airules/internal/ignore"
	"github.com/airules/airules/internal/logging"
	"github.com/airules/airules/internal/manifest"
)

// maxGlobResults bounds Glob so a huge tree cannot stall a scan.
const maxGlobResults = 10000

// Project gives scanners read-only access to the tree under Root. A Project
// lives for a single scan; package.json is read at most once.
type Project struct {
	root string
	log  logging.Logger
	ign  ignore.Matcher

	pkgOnce sync.Once
	pkg     *manifest.Package
	pkgErr  error
	warned  sync.Once
}

// Open prepares a Project for root. The .airulesignore file is optional.
func Open(root string, log logging.Logger) *Project {
	if log == nil {
		log = logging.Discard()
	}
	ign, _ := ignore.Load(filepath.Join(root, ignore.FileName))
	return &Project{root: root, log: log, ign: ign}
}

// IsAbsent reports whether err means the file simply does not exist.
func IsAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Root returns the project root directory.
func (p *Project) Root() string { return p.root }

// Logger returns the scan-scoped logger.
func (p *Project) Logger() logging.Logger { return p.log }

// Path joins a slash-separated relative path onto the root.
func (p *Project) Path(rel string) string {
	return filepath.Join(p.root, filepath.FromSlash(rel))
}

// Exists reports whether rel exists (file or directory).
func (p *Project) Exists(rel string) bool {
	_, err := os.Stat(p.Path(rel))
	return err == nil
}

// IsDir reports whether rel is a directory.
func (p *Project) IsDir(rel string) bool {
	st, err := os.Stat(p.Path(rel))
	return err == nil && st.IsDir()
}

// FirstExisting returns the first of names present under root.
func (p *Project) FirstExisting(names ...string) (string, bool) {
	for _, n := range names {
		if p.Exists(n) {
			return n, true
		}
	}
	return "", false
}

// ReadFile reads rel. Missing files satisfy IsAbsent.
func (p *Project) ReadFile(rel string) ([]byte, error) {
	return os.ReadFile(p.Path(rel))
}

// Glob returns slash-separated relative file paths matching the doublestar
// pattern, in lexical walk order. Built-in excluded directories and
// .airulesignore entries are skipped.
func (p *Project) Glob(ctx context.Context, pattern string) ([]string, error) {
	var out []string
	err := p.walk(ctx, pattern, func(rel string) bool {
		out = append(out, rel)
		return len(out) < maxGlobResults
	})
	return out, err
}

// Any reports whether at least one file matches pattern.
func (p *Project) Any(ctx context.Context, pattern string) bool {
	found := false
	_ = p.walk(ctx, pattern, func(string) bool {
		found = true
		return false
	})
	return found
}

func (p *Project) walk(ctx context.Context, pattern string, visit func(rel string) bool) error {
	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, rerr := filepath.Rel(p.root, path)
		if rerr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if isDefaultDirExcluded(d.Name()) || p.ign.MatchDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if p.ign.Match(rel) {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			if !visit(rel) {
				return fs.SkipAll
			}
		}
		return nil
	})
	return err
}

// Package returns the parsed package.json, reading it on first use.
func (p *Project) Package() (*manifest.Package, error) {
	p.pkgOnce.Do(func() {
		p.pkg, p.pkgErr = manifest.Load(p.root)
	})
	return p.pkg, p.pkgErr
}

// PackageOrNil returns the manifest or nil when it is missing or malformed.
// A malformed manifest is reported once through the logger.
func (p *Project) PackageOrNil(ctx context.Context) *manifest.Package {
	pkg, err := p.Package()
	if err != nil {
		if !IsAbsent(err) {
			p.warnOnce(ctx, err)
		}
		return nil
	}
	return pkg
}

// HasDependency reports whether package.json declares name.
func (p *Project) HasDependency(ctx context.Context, name string) bool {
	return p.PackageOrNil(ctx).HasDependency(name)
}

func (p *Project) warnOnce(ctx context.Context, err error) {
	p.warned.Do(func() {
		p.log.Warn(ctx, err, "unreadable package.json, dependency rules skipped")
	})
}
