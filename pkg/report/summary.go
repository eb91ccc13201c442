package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"digital.vasic.harness/pkg/testcase"
)

// MasterSummary aggregates the summaries of several runs.
type MasterSummary struct {
	ID            string         `json:"id"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Runs          []RunSummary   `json:"runs"`
	TotalRuns     int            `json:"total_runs"`
	TotalTests    int            `json:"total_tests"`
	PassedTests   int            `json:"passed_tests"`
	FailedTests   int            `json:"failed_tests"`
	HookFailures  int            `json:"hook_failures"`
	TotalDuration time.Duration  `json:"total_duration"`
	PassRate      float64        `json:"pass_rate"`
	Failures      []FailureEntry `json:"failures,omitempty"`
}

// RunSummary is one run's line in the master summary.
type RunSummary struct {
	Run       string        `json:"run"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	HookError string        `json:"hook_error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// FailureEntry names a failed test and its message.
type FailureEntry struct {
	Run     string `json:"run"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// BuildMasterSummary creates a master summary from run
// summaries.
func BuildMasterSummary(
	summaries []*testcase.Summary,
) *MasterSummary {
	now := time.Now()
	master := &MasterSummary{
		ID: fmt.Sprintf(
			"summary_%s", now.Format("20060102_150405"),
		),
		GeneratedAt: now,
		Runs:        make([]RunSummary, 0, len(summaries)),
	}

	for _, s := range summaries {
		master.Runs = append(master.Runs, RunSummary{
			Run:       s.Run,
			Passed:    s.Passed,
			Failed:    s.Failed,
			HookError: s.HookError,
			Duration:  s.Duration,
		})
		master.TotalRuns++
		master.TotalTests += s.Total()
		master.PassedTests += s.Passed
		master.FailedTests += s.Failed
		master.TotalDuration += s.Duration
		if s.HookError != "" {
			master.HookFailures++
		}

		for _, r := range s.Results {
			if !r.Passed() {
				master.Failures = append(master.Failures, FailureEntry{
					Run:     s.Run,
					Title:   r.Title,
					Message: r.Message,
				})
			}
		}
	}

	if master.TotalTests > 0 {
		master.PassRate = float64(master.PassedTests) /
			float64(master.TotalTests)
	}

	return master
}

// SaveMasterSummary saves the master summary as JSON, Markdown
// and HTML files in the given output directory and points
// latest_summary.{json,md,html} at them.
func SaveMasterSummary(
	summary *MasterSummary,
	outputDir string,
) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf(
			"failed to create output directory: %w", err,
		)
	}

	ts := summary.GeneratedAt.Format("20060102_150405")

	jsonPath := filepath.Join(
		outputDir,
		fmt.Sprintf("master_summary_%s.json", ts),
	)
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf(
			"failed to marshal summary: %w", err,
		)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return fmt.Errorf(
			"failed to write JSON summary: %w", err,
		)
	}

	mdPath := filepath.Join(
		outputDir,
		fmt.Sprintf("master_summary_%s.md", ts),
	)
	if err := os.WriteFile(
		mdPath, []byte(generateSummaryMarkdown(summary)), 0644,
	); err != nil {
		return fmt.Errorf(
			"failed to write Markdown summary: %w", err,
		)
	}

	htmlPath := filepath.Join(
		outputDir,
		fmt.Sprintf("master_summary_%s.html", ts),
	)
	if err := os.WriteFile(
		htmlPath, GenerateSummaryHTML(summary), 0644,
	); err != nil {
		return fmt.Errorf(
			"failed to write HTML summary: %w", err,
		)
	}

	for _, target := range []string{jsonPath, mdPath, htmlPath} {
		latest := filepath.Join(
			outputDir, "latest_summary"+filepath.Ext(target),
		)
		_ = os.Remove(latest)
		_ = os.Symlink(filepath.Base(target), latest)
	}

	return nil
}

// generateSummaryMarkdown creates markdown from a master
// summary.
func generateSummaryMarkdown(summary *MasterSummary) string {
	var sb strings.Builder

	sb.WriteString("# Test Harness - Master Summary\n\n")
	fmt.Fprintf(&sb, "**Summary ID:** %s\n\n", summary.ID)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n",
		summary.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Runs\n\n")
	sb.WriteString("| Run | Passed | Failed | Hooks | Duration |\n")
	sb.WriteString("|-----|--------|--------|-------|----------|\n")

	for _, r := range summary.Runs {
		hooks := "ok"
		if r.HookError != "" {
			hooks = "FAILED"
		}
		fmt.Fprintf(&sb, "| %s | %d | %d | %s | %v |\n",
			r.Run, r.Passed, r.Failed, hooks, r.Duration)
	}

	if len(summary.Failures) > 0 {
		sb.WriteString("\n## Failures\n\n")
		for _, f := range summary.Failures {
			fmt.Fprintf(&sb, "- **%s › %s**: %s\n",
				f.Run, f.Title, oneLine(f.Message))
		}
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Runs | %d |\n", summary.TotalRuns)
	fmt.Fprintf(&sb, "| Tests | %d |\n", summary.TotalTests)
	fmt.Fprintf(&sb, "| Passed | %d |\n", summary.PassedTests)
	fmt.Fprintf(&sb, "| Failed | %d |\n", summary.FailedTests)
	fmt.Fprintf(&sb, "| Hook Failures | %d |\n", summary.HookFailures)
	fmt.Fprintf(&sb, "| Pass Rate | %.0f%% |\n", summary.PassRate*100)
	fmt.Fprintf(&sb, "| Total Duration | %v |\n", summary.TotalDuration)

	return sb.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
