package reporting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valfrank/SimulatorML/pkg/report"
)

func TestInterpretHealth(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		want string
	}{
		{"excellent high", 100, "Excellent (>90%)"},
		{"excellent boundary", 90.5, "Excellent (>90%)"},
		{"good high", 90, "Good (70-90%)"},
		{"good mid", 80, "Good (70-90%)"},
		{"good low", 70, "Good (70-90%)"},
		{"needs work high", 69, "Needs Work (50-70%)"},
		{"needs work mid", 60, "Needs Work (50-70%)"},
		{"needs work low", 50, "Needs Work (50-70%)"},
		{"poor high", 49, "Poor (<50%)"},
		{"poor zero", 0, "Poor (<50%)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterpretHealth(tt.pct)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterpretPassRate(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want string
	}{
		{"all passed", 1.0, "All checks passed (100%)"},
		{"most passed", 0.85, "Most checks passed (85%)"},
		{"about half", 0.60, "About half the checks passed (60%)"},
		{"few passed", 0.30, "Few checks passed (30%)"},
		{"none passed", 0.0, "Few checks passed (0%)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterpretPassRate(tt.rate)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSummaryReport(t *testing.T) {
	out := FormatSummaryReport(newTestSnapshot())

	assert.Contains(t, out, "=== Interpretation ===")
	assert.Contains(t, out, "Needs Work (50-70%)")
	assert.Contains(t, out, "About half the checks passed (50%)")
	assert.Contains(t, out, "Duration:  3.5s")
	assert.Contains(t, out, "2 passed, 1 failed, 1 errors out of 4 total")
	assert.Contains(t, out, "✗ sales: 1/2 passed")
	assert.Contains(t, out, "✗ events: 1/2 passed")
	assert.Contains(t, out, "Attention:")
	assert.Contains(t, out, "✗ sales zero_count(column=qty): values {total: 3, count: 2, delta: 0.666667} outside limits {delta: [0, 0.3]}")
	assert.Contains(t, out, `! events value_count(column=status, value=ok): column "status" not found`)
}

func TestFormatSummaryReport_AllPassed(t *testing.T) {
	snap := report.Snapshot{
		Summary: report.Summary{
			Passed: 2, Total: 2, PassedPct: 100, DurationMs: 120,
		},
		Checks: []report.Row{
			{Table: "sales", Metric: "row_count()", Status: report.StatusPassed},
			{Table: "sales", Metric: "zero_count(column=qty)", Status: report.StatusPassed},
		},
	}

	out := FormatSummaryReport(snap)

	assert.Contains(t, out, "Excellent (>90%)")
	assert.Contains(t, out, "All checks passed (100%)")
	assert.Contains(t, out, "✓ sales: 2/2 passed")
	assert.NotContains(t, out, "Attention:")
}

func TestFormatSummaryReport_Empty(t *testing.T) {
	out := FormatSummaryReport(report.Snapshot{})
	assert.True(t, strings.Contains(out, "Interpretation"))
	assert.Contains(t, out, "Poor (<50%)")
	assert.NotContains(t, out, "Checks:")
}

func TestFormatSummaryReport_TableOrderFollowsLedger(t *testing.T) {
	snap := report.Snapshot{
		Summary: report.Summary{Passed: 2, Total: 2, PassedPct: 100},
		Checks: []report.Row{
			{Table: "zeta", Metric: "row_count()", Status: report.StatusPassed},
			{Table: "alpha", Metric: "row_count()", Status: report.StatusPassed},
		},
	}

	out := FormatSummaryReport(snap)

	zi := strings.Index(out, "✓ zeta")
	ai := strings.Index(out, "✓ alpha")
	assert.True(t, zi >= 0 && ai >= 0 && zi < ai, "tables should appear in ledger order")
}
