package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/valfrank/SimulatorML/pkg/report"
)

// InterpretHealth returns a plain-language label for a pass percentage
// (0-100).
func InterpretHealth(pct float64) string {
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

// InterpretPassRate returns a human-readable explanation of a pass rate
// (0 to 1).
func InterpretPassRate(rate float64) string {
	pct := rate * 100
	switch {
	case pct >= 100:
		return fmt.Sprintf("All checks passed (%.0f%%)", pct)
	case pct >= 80:
		return fmt.Sprintf("Most checks passed (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("About half the checks passed (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Few checks passed (%.0f%%)", pct)
	}
}

// FormatSummaryReport produces a full plain-language report from a fitted
// snapshot.
func FormatSummaryReport(snap report.Snapshot) string {
	var b strings.Builder

	s := snap.Summary
	duration := time.Duration(s.DurationMs) * time.Millisecond

	b.WriteString("=== Interpretation ===\n\n")

	b.WriteString(fmt.Sprintf("Health:    %s\n", InterpretHealth(s.PassedPct)))
	rate := 0.0
	if s.Total > 0 {
		rate = float64(s.Passed) / float64(s.Total)
	}
	b.WriteString(fmt.Sprintf("Pass Rate: %s\n", InterpretPassRate(rate)))
	b.WriteString(fmt.Sprintf("Duration:  %v\n", duration))

	if s.Total > 0 {
		b.WriteString(fmt.Sprintf("Checks:    %d passed, %d failed, %d errors out of %d total\n",
			s.Passed, s.Failed, s.Errors, s.Total))
	}

	// Per-table rollup
	if len(snap.Checks) > 0 {
		type tally struct {
			passed int
			total  int
		}
		tallies := make(map[string]*tally)
		var order []string
		for _, row := range snap.Checks {
			tl, ok := tallies[row.Table]
			if !ok {
				tl = &tally{}
				tallies[row.Table] = tl
				order = append(order, row.Table)
			}
			tl.total++
			if row.Status == report.StatusPassed {
				tl.passed++
			}
		}

		b.WriteString("\nPer-Table Results:\n")
		for _, name := range order {
			tl := tallies[name]
			icon := "✓"
			if tl.passed < tl.total {
				icon = "✗"
			}
			b.WriteString(fmt.Sprintf("  %s %s: %d/%d passed\n", icon, name, tl.passed, tl.total))
		}
	}

	var attention []string
	for _, row := range snap.Checks {
		switch row.Status {
		case report.StatusFailed:
			attention = append(attention, fmt.Sprintf("  ✗ %s %s: values %s outside limits %s",
				row.Table, row.Metric, report.FormatValues(row.Values), row.Limits))
		case report.StatusError:
			attention = append(attention, fmt.Sprintf("  ! %s %s: %s", row.Table, row.Metric, row.Error))
		}
	}
	if len(attention) > 0 {
		b.WriteString("\nAttention:\n")
		for _, line := range attention {
			b.WriteString(line + "\n")
		}
	}

	return b.String()
}
