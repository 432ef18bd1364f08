package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/airules/airules/internal/files"
	"github.com/airules/airules/internal/types"
)

// RunResults stores the rules and metadata from the last generate run.
type RunResults struct {
	Rules     []types.Rule `json:"rules"`
	Failed    []string     `json:"failed_scanners,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Root      string       `json:"root"`
	Count     int          `json:"count"`
}

func resultsPath(root string) string {
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "airules_last_run.json")
	}
	return filepath.Join(root, ".airules_last_run.json")
}

// SaveResults saves the rules of a run to the cache.
func SaveResults(root string, rules []types.Rule, failed []string) error {
	results := RunResults{
		Rules:     rules,
		Failed:    failed,
		Timestamp: time.Now(),
		Root:      root,
		Count:     len(rules),
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return files.WriteFileAtomic(resultsPath(root), b, 0o644)
}

// LoadResults loads the last run's rules from the cache.
func LoadResults(root string) (RunResults, error) {
	var results RunResults
	f, err := os.ReadFile(resultsPath(root))
	if err != nil {
		return results, err
	}
	if err := json.Unmarshal(f, &results); err != nil {
		return results, err
	}
	return results, nil
}
