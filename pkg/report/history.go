package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"digital.vasic.harness/pkg/testcase"
)

// HistoricalEntry represents a single run in the historical log.
type HistoricalEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Run       string    `json:"run"`
	Passed    int       `json:"passed"`
	Failed    int       `json:"failed"`
	Total     int       `json:"total"`
	HookError string    `json:"hook_error,omitempty"`
	Duration  string    `json:"duration"`
}

// AppendToHistory adds an entry for summary to the historical
// log stored at historyPath. Each entry is a single JSON line.
func AppendToHistory(
	historyPath string,
	summary *testcase.Summary,
) error {
	entry := HistoricalEntry{
		Timestamp: summary.StartTime.Add(summary.Duration),
		Run:       summary.Run,
		Passed:    summary.Passed,
		Failed:    summary.Failed,
		Total:     summary.Total(),
		HookError: summary.HookError,
		Duration:  summary.Duration.String(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf(
			"failed to marshal history entry: %w", err,
		)
	}

	file, err := os.OpenFile(
		historyPath,
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf(
			"failed to open history file: %w", err,
		)
	}
	defer func() { _ = file.Close() }()

	_, err = fmt.Fprintln(file, string(data))
	return err
}

// ReadHistory loads every entry from the historical log. A
// missing file yields no entries.
func ReadHistory(historyPath string) ([]HistoricalEntry, error) {
	file, err := os.Open(historyPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf(
			"failed to open history file: %w", err,
		)
	}
	defer func() { _ = file.Close() }()

	var entries []HistoricalEntry
	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e HistoricalEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return entries, fmt.Errorf(
				"history line %d: %w", line, err,
			)
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}

// HistoryReporter appends every run summary to a history file.
type HistoryReporter struct {
	path string
}

// NewHistoryReporter creates a HistoryReporter for path.
func NewHistoryReporter(path string) *HistoryReporter {
	return &HistoryReporter{path: path}
}

// ReportResult is a no-op; history is kept per run.
func (h *HistoryReporter) ReportResult(*testcase.Result) error {
	return nil
}

// ReportSummary appends the summary.
func (h *HistoryReporter) ReportSummary(summary *testcase.Summary) error {
	return AppendToHistory(h.path, summary)
}
