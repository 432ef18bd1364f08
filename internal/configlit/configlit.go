package configlit

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// ErrUnparseable is returned when no structured configuration could be
// recovered from the source text.
var ErrUnparseable = errors.New("config literal is not parseable")

// Literal is the structured form of an exported object literal. Values are
// string, float64, bool, []any or map[string]any.
type Literal map[string]any

var (
	reAssignExport  = regexp.MustCompile(`module\.exports\s*=`)
	reDefaultExport = regexp.MustCompile(`export\s+default\b`)

	// a "//" right after ':' is left alone so URLs like https://x survive
	reLineComment    = regexp.MustCompile(`(?m)(^|[^:])//[^\n]*`)
	reBlockComment   = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reTrailingComma  = regexp.MustCompile(`,(\s*[}\]])`)
	reBareKey        = regexp.MustCompile(`([{,]\s*)([A-Za-z_$][A-Za-z0-9_$]*)(\s*:)`)
	reSingleQuoteStr = regexp.MustCompile(`'((?:[^'\\\n]|\\.)*)'`)
)

// Normalize recovers the object exported by a JS-style config file
// (module.exports = {...} or export default {...}) without evaluating it.
// The returned error always wraps ErrUnparseable.
//
// This is a heuristic. Function values, spreads, template literals,
// computed keys and strings containing double quotes or braces are not
// supported; they usually fail cleanly but may also decode into wrong data.
func Normalize(src string) (Literal, error) {
	start := exportStart(src)
	if start < 0 {
		return nil, fmt.Errorf("%w: no module.exports or export default", ErrUnparseable)
	}
	body, ok := extractObject(src[start:])
	if !ok {
		return nil, fmt.Errorf("%w: unbalanced or missing object braces", ErrUnparseable)
	}
	text := stripJSONC(body)
	text = reBareKey.ReplaceAllString(text, `${1}"${2}"${3}`)
	text = reSingleQuoteStr.ReplaceAllString(text, `"${1}"`)

	var out Literal
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: exported value is not an object", ErrUnparseable)
	}
	return out, nil
}

// stripJSONC removes line and block comments and trailing commas from an
// extracted object body. The passes are not string-aware.
func stripJSONC(src string) string {
	s := reLineComment.ReplaceAllString(src, "${1}")
	s = reBlockComment.ReplaceAllString(s, "")
	s = reTrailingComma.ReplaceAllString(s, "${1}")
	return s
}

// exportStart returns the offset just past the earliest export marker, or -1.
func exportStart(src string) int {
	best := -1
	end := -1
	for _, re := range []*regexp.Regexp{reAssignExport, reDefaultExport} {
		loc := re.FindStringIndex(src)
		if loc == nil {
			continue
		}
		if best < 0 || loc[0] < best {
			best, end = loc[0], loc[1]
		}
	}
	return end
}

// extractObject returns the text from the first '{' to its matching '}'.
// Depth counting is not string-aware.
func extractObject(s string) (string, bool) {
	open := strings.IndexByte(s, '{')
	if open < 0 {
		return "", false
	}
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[open : i+1], true
			}
		}
	}
	return "", false
}

// String returns the string value at key.
func (l Literal) String(key string) (string, bool) {
	v, ok := l[key].(string)
	return v, ok
}

// Bool returns the boolean value at key.
func (l Literal) Bool(key string) (bool, bool) {
	v, ok := l[key].(bool)
	return v, ok
}

// Int returns the value at key when it is an integral number. Values
// decoded from YAML or TOML (int, int64) are accepted as well.
func (l Literal) Int(key string) (int, bool) {
	switch v := l[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

// Map returns the nested object at key.
func (l Literal) Map(key string) (Literal, bool) {
	m, ok := l[key].(map[string]any)
	if !ok {
		return nil, false
	}
	return Literal(m), true
}

// Strings returns the string elements of the list at key, skipping others.
func (l Literal) Strings(key string) []string {
	arr, ok := l[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
