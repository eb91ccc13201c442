package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"digital.vasic.harness/pkg/testcase"
)

// ConsoleReporter prints one line per test and a closing tally
// per run. Colors are applied only when the writer is a
// terminal.
type ConsoleReporter struct {
	mu   sync.Mutex
	out  io.Writer
	pass lipgloss.Style
	fail lipgloss.Style
	dim  lipgloss.Style
}

// NewConsoleReporter creates a ConsoleReporter writing to out.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	r := lipgloss.NewRenderer(out)
	return &ConsoleReporter{
		out:  out,
		pass: r.NewStyle().Foreground(lipgloss.Color("2")),
		fail: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		dim:  r.NewStyle().Faint(true),
	}
}

// ReportResult prints "✓ title (duration)" or "✕ title" followed
// by the indented failure message.
func (c *ConsoleReporter) ReportResult(result *testcase.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	took := c.dim.Render(fmt.Sprintf("(%s)", roundDuration(result.Duration)))
	if result.Passed() {
		_, err := fmt.Fprintf(c.out, "  %s %s %s\n",
			c.pass.Render("✓"), result.Title, took)
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s %s %s\n",
		c.fail.Render("✕"), result.Title, took)
	for _, line := range strings.Split(result.Message, "\n") {
		fmt.Fprintf(&sb, "      %s\n", line)
	}
	_, err := io.WriteString(c.out, sb.String())
	return err
}

// ReportSummary prints the run tally.
func (c *ConsoleReporter) ReportSummary(summary *testcase.Summary) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var parts []string
	if summary.Failed > 0 {
		parts = append(parts,
			c.fail.Render(fmt.Sprintf("%d failed", summary.Failed)))
	}
	if summary.Passed > 0 {
		parts = append(parts,
			c.pass.Render(fmt.Sprintf("%d passed", summary.Passed)))
	}
	parts = append(parts, fmt.Sprintf("%d total", summary.Total()))

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\nTests: %s\n", summary.Run, strings.Join(parts, ", "))
	if summary.HookError != "" {
		fmt.Fprintf(&sb, "Hooks: %s\n", c.fail.Render(summary.HookError))
	}
	fmt.Fprintf(&sb, "Time:  %s\n", roundDuration(summary.Duration))

	_, err := io.WriteString(c.out, sb.String())
	return err
}

func roundDuration(d time.Duration) time.Duration {
	if d > time.Second {
		return d.Round(10 * time.Millisecond)
	}
	return d.Round(time.Millisecond)
}
