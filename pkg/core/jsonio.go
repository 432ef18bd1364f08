package core

import (
	"encoding/json"
	"io"
)

// MarshalRules pretty-prints rules as JSON for humans or pipelines.
func MarshalRules(w io.Writer, rules []Rule) error {
	if rules == nil {
		rules = []Rule{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rules)
}

// UnmarshalRules decodes rules JSON, useful for ingestion tests.
func UnmarshalRules(r io.Reader) ([]Rule, error) {
	var rules []Rule
	if err := json.NewDecoder(r).Decode(&rules); err != nil {
		return nil, err
	}
	return rules, nil
}
