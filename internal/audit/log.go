package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/airules/airules/internal/types"
)

// RunRecord is one line of the audit log, appended per generate run.
type RunRecord struct {
	Timestamp      time.Time      `json:"timestamp"`
	RunID          string         `json:"run_id"`
	Root           string         `json:"root"`
	Target         string         `json:"target,omitempty"`
	Mode           string         `json:"mode"`
	TotalRules     int            `json:"total_rules"`
	CategoryCounts map[string]int `json:"category_counts"`
	FailedScanners []string       `json:"failed_scanners,omitempty"`
	Changed        bool           `json:"changed"`
	Duration       string         `json:"duration"`
	Repo           string         `json:"repo,omitempty"`
	Commit         string         `json:"commit,omitempty"`
	Branch         string         `json:"branch,omitempty"`
}

type AuditLog struct {
	logPath string
}

func NewAuditLog(root string) *AuditLog {
	gitDir := filepath.Join(root, ".git")
	logPath := filepath.Join(root, ".airules_audit.jsonl")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		logPath = filepath.Join(gitDir, "airules_audit.jsonl")
	}
	return &AuditLog{logPath: logPath}
}

// Path returns the location of the log file.
func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns all records, newest first. Reading stops at the
// first corrupt line.
func (a *AuditLog) LoadHistory() ([]RunRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []RunRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record RunRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (a *AuditLog) LogRun(record RunRecord) error {
	if record.RunID == "" {
		record.RunID = fmt.Sprintf("run_%d", time.Now().UnixNano())
	}
	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// DeleteRecord removes the record at index, counted newest first as
// returned by LoadHistory.
func (a *AuditLog) DeleteRecord(index int) error {
	records, err := a.LoadHistory()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(records) {
		return fmt.Errorf("invalid index: %d", index)
	}
	records = append(records[:index], records[index+1:]...)

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	f, err := os.Create(a.logPath)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to write audit record: %w", err)
		}
	}
	return nil
}

// CreateRunRecord summarises a run. Rules are counted per display title.
func CreateRunRecord(
	root, target, mode string,
	rules []types.Rule,
	failed []string,
	changed bool,
	duration time.Duration,
) RunRecord {
	counts := make(map[string]int)
	for _, r := range rules {
		counts[r.Title()]++
	}
	return RunRecord{
		Timestamp:      time.Now(),
		Root:           root,
		Target:         target,
		Mode:           mode,
		TotalRules:     len(rules),
		CategoryCounts: counts,
		FailedScanners: failed,
		Changed:        changed,
		Duration:       duration.String(),
	}
}
