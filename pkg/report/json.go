package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"digital.vasic.harness/pkg/testcase"
)

// Event kinds written by JSONReporter.
const (
	EventResult  = "result"
	EventSummary = "summary"
)

// JSONReporter writes one JSON object per line: a "result" event
// per test and a "summary" event per run.
type JSONReporter struct {
	mu     sync.Mutex
	out    io.Writer
	pretty bool
}

type jsonResultEvent struct {
	Event string `json:"event"`
	*testcase.Result
}

type jsonSummaryEvent struct {
	Event string `json:"event"`
	*testcase.Summary
	PassRate float64 `json:"pass_rate"`
}

// NewJSONReporter creates a new JSON reporter. When pretty is
// true, output is indented for readability and no longer one
// object per line.
func NewJSONReporter(out io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{out: out, pretty: pretty}
}

// GenerateReport encodes a single result event.
func (r *JSONReporter) GenerateReport(
	result *testcase.Result,
) ([]byte, error) {
	return r.marshal(jsonResultEvent{Event: EventResult, Result: result})
}

// GenerateSummary encodes a summary event.
func (r *JSONReporter) GenerateSummary(
	summary *testcase.Summary,
) ([]byte, error) {
	return r.marshal(jsonSummaryEvent{
		Event:    EventSummary,
		Summary:  summary,
		PassRate: summary.PassRate(),
	})
}

// ReportResult writes a result event.
func (r *JSONReporter) ReportResult(result *testcase.Result) error {
	data, err := r.GenerateReport(result)
	if err != nil {
		return fmt.Errorf("encode result %q: %w", result.Title, err)
	}
	return r.write(data)
}

// ReportSummary writes a summary event.
func (r *JSONReporter) ReportSummary(summary *testcase.Summary) error {
	data, err := r.GenerateSummary(summary)
	if err != nil {
		return fmt.Errorf("encode summary %q: %w", summary.Run, err)
	}
	return r.write(data)
}

func (r *JSONReporter) marshal(v any) ([]byte, error) {
	if r.pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func (r *JSONReporter) write(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := fmt.Fprintln(r.out, string(data))
	return err
}
