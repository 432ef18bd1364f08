package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/airules/airules/internal/types"
)

// DocumentVersion is the schema version of Document.
const DocumentVersion = 1

// Document is the machine-readable form of a run, written by --json and
// read back by the results cache.
type Document struct {
	Version   int          `json:"version"`
	Generated time.Time    `json:"generated"`
	Root      string       `json:"root,omitempty"`
	Mode      Mode         `json:"mode"`
	Rules     []types.Rule `json:"rules"`
	Groups    []Group      `json:"groups,omitempty"`
	Failed    []string     `json:"failedScanners,omitempty"`
}

// NewDocument builds a Document for rules. Groups are filled in
// categorized mode.
func NewDocument(root string, rules []types.Rule, mode Mode) Document {
	doc := Document{
		Version:   DocumentVersion,
		Generated: time.Now().UTC(),
		Root:      root,
		Mode:      mode,
		Rules:     rules,
	}
	if doc.Rules == nil {
		doc.Rules = []types.Rule{}
	}
	if mode == Categorized {
		doc.Groups = Categorize(rules)
	}
	return doc
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ReadJSON decodes a Document and rejects unknown schema versions.
func ReadJSON(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return doc, fmt.Errorf("decode rules document: %w", err)
	}
	if doc.Version != DocumentVersion {
		return doc, fmt.Errorf("unsupported rules document version %d", doc.Version)
	}
	return doc, nil
}
