// Package manifest reads dependency manifests (package.json) for scanners.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PackageJSON is the manifest file name.
const PackageJSON = "package.json"

// Package is the subset of package.json that scanners consult.
type Package struct {
	Name                 string                     `json:"name"`
	PackageManager       string                     `json:"packageManager"`
	Type                 string                     `json:"type"`
	Engines              map[string]string          `json:"engines"`
	Scripts              map[string]string          `json:"scripts"`
	Dependencies         map[string]string          `json:"dependencies"`
	DevDependencies      map[string]string          `json:"devDependencies"`
	PeerDependencies     map[string]string          `json:"peerDependencies"`
	OptionalDependencies map[string]string          `json:"optionalDependencies"`
	Workspaces           json.RawMessage            `json:"workspaces"`
	raw                  map[string]json.RawMessage
}

// Load reads root/package.json. A missing file returns an error satisfying
// errors.Is(err, fs.ErrNotExist).
func Load(root string) (*Package, error) {
	b, err := os.ReadFile(filepath.Join(root, PackageJSON))
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes package.json content.
func Parse(b []byte) (*Package, error) {
	var p Package
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", PackageJSON, err)
	}
	if err := json.Unmarshal(b, &p.raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", PackageJSON, err)
	}
	return &p, nil
}

// HasDependency reports whether name is declared as a runtime, development
// or peer dependency.
func (p *Package) HasDependency(name string) bool {
	_, ok := p.DependencyVersion(name)
	return ok
}

// DependencyVersion returns the declared version range of name, looking at
// dependencies, devDependencies and peerDependencies in that order.
func (p *Package) DependencyVersion(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, group := range []map[string]string{p.Dependencies, p.DevDependencies, p.PeerDependencies} {
		if v, ok := group[name]; ok {
			return v, true
		}
	}
	return "", false
}

// HasAnyDependency reports whether any of names is declared.
func (p *Package) HasAnyDependency(names ...string) bool {
	for _, n := range names {
		if p.HasDependency(n) {
			return true
		}
	}
	return false
}

// HasDependencyPrefix reports whether a dependency name starts with prefix,
// e.g. "@nestjs/".
func (p *Package) HasDependencyPrefix(prefix string) bool {
	if p == nil {
		return false
	}
	for _, group := range []map[string]string{p.Dependencies, p.DevDependencies, p.PeerDependencies} {
		for name := range group {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
	}
	return false
}

// Manager splits the packageManager field ("pnpm@9.1.0") into name and
// version. ok is false when the field is absent.
func (p *Package) Manager() (name, version string, ok bool) {
	if p == nil {
		return "", "", false
	}
	field := strings.TrimSpace(p.PackageManager)
	if field == "" {
		return "", "", false
	}
	name, version, _ = strings.Cut(field, "@")
	// corepack allows a trailing +sha suffix
	version, _, _ = strings.Cut(version, "+")
	return name, version, name != ""
}

// WorkspaceGlobs returns the workspace patterns from either the array form
// or the {"packages": [...]} object form.
func (p *Package) WorkspaceGlobs() []string {
	if p == nil || len(p.Workspaces) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(p.Workspaces, &list); err == nil {
		return list
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(p.Workspaces, &obj); err == nil {
		return obj.Packages
	}
	return nil
}

// Raw returns the undecoded JSON of a top-level field.
func (p *Package) Raw(field string) (json.RawMessage, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.raw[field]
	return v, ok
}
