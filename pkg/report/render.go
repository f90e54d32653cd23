package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/valfrank/SimulatorML/pkg/metrics"
)

// Column caps keep pathological cell contents from blowing up the layout.
const (
	maxValuesWidth = 48
	maxErrorWidth  = 64
)

// valueKeyOrder fixes the display order of result keys; anything outside
// the known vocabulary sorts alphabetically after these.
var valueKeyOrder = []string{
	metrics.KeyTotal,
	metrics.KeyCount,
	metrics.KeyDelta,
	metrics.KeyLCB,
	metrics.KeyUCB,
	metrics.KeyToday,
	metrics.KeyLastDay,
	metrics.KeyLag,
}

// Render produces the textual form of a fitted report: title line, ledger
// table, the three summary lines and the total.
func (r *Report) Render() (string, error) {
	if r.state == nil {
		return "", ErrNotFitted
	}
	summary := r.state.summary

	headers := []string{"Table", "Metric", "Limits", "Values", "Status", "Error"}
	cells := make([][]string, 0, len(r.state.rows))
	for _, row := range r.state.rows {
		cells = append(cells, []string{
			row.Table,
			row.Metric,
			row.Limits,
			truncateCell(FormatValues(row.Values), maxValuesWidth),
			row.Status,
			truncateCell(row.Error, maxErrorWidth),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range cells {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(summary.Title)
	b.WriteString("\n\n")

	writeRow := func(row []string) {
		parts := make([]string, len(row))
		for i, cell := range row {
			parts[i] = padRight(cell, widths[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		b.WriteString("\n")
	}
	writeRow(headers)
	for _, row := range cells {
		writeRow(row)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Passed: %d (%.2f%%)\n", summary.Passed, summary.PassedPct)
	fmt.Fprintf(&b, "Failed: %d (%.2f%%)\n", summary.Failed, summary.FailedPct)
	fmt.Fprintf(&b, "Errors: %d (%.2f%%)\n", summary.Errors, summary.ErrorsPct)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total: %d\n", summary.Total)
	return b.String(), nil
}

// FormatValues renders a result map with a stable key order, or "-" for an
// error row that produced no values.
func FormatValues(res metrics.Result) string {
	if res == nil {
		return "-"
	}

	known := make(map[string]bool, len(valueKeyOrder))
	keys := make([]string, 0, len(res))
	for _, key := range valueKeyOrder {
		if _, ok := res[key]; ok {
			keys = append(keys, key)
			known[key] = true
		}
	}
	var extra []string
	for key := range res {
		if !known[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	var b strings.Builder
	b.WriteString("{")
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(formatScalar(res[key]))
	}
	b.WriteString("}")
	return b.String()
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case float64:
		return strconv.FormatFloat(x, 'g', 6, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', 6, 32)
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}

func truncateCell(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
