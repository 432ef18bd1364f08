// Package ctxparse decodes the small JSON, JSONC, YAML and TOML files that
// tools keep at a project root into generic maps, and looks up dotted keys
// in the result.
package ctxparse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tailscale/hujson"
	yaml "gopkg.in/yaml.v3"
)

// ErrNotObject is returned when a file decodes to something other than a
// top-level object (a list, a scalar, or nothing).
var ErrNotObject = errors.New("top-level value is not an object")

// Decode parses data according to the extension of name. Files without a
// known extension (e.g. .prettierrc) are tried as JSON first, then YAML.
func Decode(name string, data []byte) (map[string]any, error) {
	var (
		m   map[string]any
		err error
	)
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".jsonc":
		m, err = decodeJSON(data)
	case ".yaml", ".yml":
		m, err = decodeYAML(data)
	case ".toml":
		m, err = decodeTOML(data)
	default:
		m, err = decodeJSON(data)
		if err != nil {
			m, err = decodeYAML(data)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return m, nil
}

func decodeJSON(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err == nil {
		return nonNil(m)
	}
	// tsconfig.json and friends allow comments and trailing commas
	std, err := hujson.Standardize(bytes.Clone(data))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(std, &m); err != nil {
		return nil, err
	}
	return nonNil(m)
}

func decodeYAML(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNotObject
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return nonNil(m)
}

func decodeTOML(data []byte) (map[string]any, error) {
	m := map[string]any{}
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func nonNil(m map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, ErrNotObject
	}
	return m, nil
}

// Lookup walks a dotted key path ("compilerOptions.strict") through nested
// maps. It reports false when any segment is missing or not a map.
func Lookup(m map[string]any, key string) (any, bool) {
	var cur any = m
	for _, part := range strings.Split(key, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// LookupString is Lookup restricted to string values.
func LookupString(m map[string]any, key string) (string, bool) {
	v, ok := Lookup(m, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// LookupMap is Lookup restricted to nested objects.
func LookupMap(m map[string]any, key string) (map[string]any, bool) {
	v, ok := Lookup(m, key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(map[string]any)
	return sub, ok
}
