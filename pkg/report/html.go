package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"time"
)

// GenerateSummaryHTML renders a master summary as a standalone
// HTML page.
func GenerateSummaryHTML(summary *MasterSummary) []byte {
	var buf bytes.Buffer
	WriteSummaryHTML(&buf, summary)
	return buf.Bytes()
}

// WriteSummaryHTML writes a master summary as HTML to w.
func WriteSummaryHTML(w io.Writer, summary *MasterSummary) {
	writeHeader(w, "Test Harness - Master Summary")

	fmt.Fprintln(w, "<h1>Test Harness - Master Summary</h1>")
	fmt.Fprintf(
		w,
		"<p><strong>Summary ID:</strong> %s</p>\n",
		html.EscapeString(summary.ID),
	)
	fmt.Fprintf(
		w,
		"<p><strong>Generated:</strong> %s</p>\n",
		summary.GeneratedAt.Format(time.RFC3339),
	)

	writeRunsTable(w, summary)
	writeFailures(w, summary)
	writeStats(w, summary)
	writeFooter(w)
}

func writeRunsTable(w io.Writer, summary *MasterSummary) {
	fmt.Fprintln(w, "<h2>Runs</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(
		w,
		"<tr><th>Run</th><th>Passed</th><th>Failed</th>"+
			"<th>Hooks</th><th>Duration</th></tr>",
	)

	for _, r := range summary.Runs {
		cls, hooks := "status-passed", "ok"
		if r.HookError != "" {
			cls, hooks = "status-failed", "FAILED"
		}
		fmt.Fprintf(
			w,
			"<tr><td>%s</td><td>%d</td><td>%d</td>"+
				"<td class=\"%s\">%s</td><td>%v</td></tr>\n",
			html.EscapeString(r.Run),
			r.Passed, r.Failed,
			cls, hooks,
			r.Duration,
		)
	}

	fmt.Fprintln(w, "</table>")
}

func writeFailures(w io.Writer, summary *MasterSummary) {
	if len(summary.Failures) == 0 && summary.HookFailures == 0 {
		return
	}

	fmt.Fprintln(w, "<h2>Failures</h2>")
	for _, r := range summary.Runs {
		if r.HookError == "" {
			continue
		}
		fmt.Fprintf(
			w,
			"<h3>%s</h3>\n<p class=\"status-failed\">%s</p>\n",
			html.EscapeString(r.Run),
			html.EscapeString(r.HookError),
		)
	}
	for _, f := range summary.Failures {
		fmt.Fprintf(
			w,
			"<h3>%s &rsaquo; %s</h3>\n<pre>%s</pre>\n",
			html.EscapeString(f.Run),
			html.EscapeString(f.Title),
			html.EscapeString(f.Message),
		)
	}
}

func writeStats(w io.Writer, summary *MasterSummary) {
	fmt.Fprintln(w, "<h2>Statistics</h2>")
	fmt.Fprintln(w, "<table>")
	fmt.Fprintln(w, "<tr><th>Metric</th><th>Value</th></tr>")
	fmt.Fprintf(w, "<tr><td>Runs</td><td>%d</td></tr>\n", summary.TotalRuns)
	fmt.Fprintf(w, "<tr><td>Tests</td><td>%d</td></tr>\n", summary.TotalTests)
	fmt.Fprintf(w, "<tr><td>Passed</td><td>%d</td></tr>\n", summary.PassedTests)
	fmt.Fprintf(w, "<tr><td>Failed</td><td>%d</td></tr>\n", summary.FailedTests)
	fmt.Fprintf(
		w,
		"<tr><td>Hook Failures</td><td>%d</td></tr>\n",
		summary.HookFailures,
	)
	fmt.Fprintf(
		w,
		"<tr><td>Pass Rate</td><td>%.0f%%</td></tr>\n",
		summary.PassRate*100,
	)
	fmt.Fprintf(
		w,
		"<tr><td>Total Duration</td><td>%v</td></tr>\n",
		summary.TotalDuration,
	)
	fmt.Fprintln(w, "</table>")
}

func writeHeader(w io.Writer, title string) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
body {
  font-family: -apple-system, BlinkMacSystemFont,
    "Segoe UI", Roboto, sans-serif;
  max-width: 960px;
  margin: 0 auto;
  padding: 20px;
  color: #333;
  background: #f9f9f9;
}
h1 { color: #2c3e50; border-bottom: 2px solid #3498db; padding-bottom: 10px; }
h2 { color: #2c3e50; margin-top: 30px; }
h3 { color: #34495e; }
table {
  border-collapse: collapse;
  width: 100%%;
  margin: 10px 0;
  background: #fff;
}
th, td {
  border: 1px solid #ddd;
  padding: 8px 12px;
  text-align: left;
}
th { background: #3498db; color: #fff; }
tr:nth-child(even) { background: #f2f2f2; }
.status-passed { color: #27ae60; font-weight: bold; }
.status-failed { color: #e74c3c; font-weight: bold; }
pre {
  background: #ecf0f1;
  padding: 8px;
  border-radius: 3px;
  white-space: pre-wrap;
}
footer {
  margin-top: 40px;
  padding-top: 10px;
  border-top: 1px solid #ddd;
  color: #7f8c8d;
  font-size: 0.9em;
}
</style>
</head>
<body>
`, html.EscapeString(title))
}

func writeFooter(w io.Writer) {
	fmt.Fprintln(w, "<footer>")
	fmt.Fprintln(w, "<p>Generated by harness</p>")
	fmt.Fprintln(w, "</footer>")
	fmt.Fprintln(w, "</body>")
	fmt.Fprintln(w, "</html>")
}
