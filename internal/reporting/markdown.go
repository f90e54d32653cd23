package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/valfrank/SimulatorML/pkg/report"
)

// RenderMarkdown renders a fitted snapshot as a GitHub-flavored markdown
// document: one ledger table plus bold summary counters.
func RenderMarkdown(snap report.Snapshot) string {
	var b strings.Builder

	s := snap.Summary
	duration := time.Duration(s.DurationMs) * time.Millisecond

	b.WriteString(fmt.Sprintf("# %s\n\n", s.Title))
	b.WriteString(fmt.Sprintf("Run `%s` finished in %v.\n\n", s.RunID, duration))

	b.WriteString("| Table | Metric | Limits | Values | Status | Error |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, row := range snap.Checks {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			mdCell(row.Table),
			mdCell(row.Metric),
			mdCell(row.Limits),
			mdCell(report.FormatValues(row.Values)),
			statusWord(row.Status),
			mdCell(row.Error)))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("**Passed:** %d (%.2f%%)  \n", s.Passed, s.PassedPct))
	b.WriteString(fmt.Sprintf("**Failed:** %d (%.2f%%)  \n", s.Failed, s.FailedPct))
	b.WriteString(fmt.Sprintf("**Errors:** %d (%.2f%%)  \n", s.Errors, s.ErrorsPct))
	b.WriteString(fmt.Sprintf("**Total:** %d\n", s.Total))

	return b.String()
}

func statusWord(status string) string {
	switch status {
	case report.StatusPassed:
		return "passed"
	case report.StatusFailed:
		return "failed"
	case report.StatusError:
		return "error"
	default:
		return status
	}
}

// mdCell escapes characters that would break the table layout.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
