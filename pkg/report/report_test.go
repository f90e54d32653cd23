package report

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valfrank/SimulatorML/pkg/metrics"
	"github.com/valfrank/SimulatorML/pkg/table"
)

func specRegistry(t *testing.T) map[string]table.Table {
	t.Helper()
	tbl, err := table.FromColumns([]string{"x", "y"}, map[string][]any{
		"x": {int64(0), int64(0), int64(5)},
		"y": {int64(1), int64(2), int64(1)},
	})
	require.NoError(t, err)
	return map[string]table.Table{"sales": tbl}
}

func TestFit_PassingCheck(t *testing.T) {
	r := New([]Check{{
		Table:  "sales",
		Metric: metrics.ZeroCount{Column: "x"},
		Limits: Limits{"delta": {0.5, 1.0}},
	}})
	require.NoError(t, r.Fit(context.Background(), specRegistry(t)))

	rows, err := r.Ledger()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, StatusPassed, rows[0].Status)
	require.Equal(t, 3, rows[0].Values[metrics.KeyTotal])
	require.Equal(t, 2, rows[0].Values[metrics.KeyCount])
	require.Equal(t, 2.0/3.0, rows[0].Values[metrics.KeyDelta])

	summary, err := r.Summary()
	require.NoError(t, err)
	require.Equal(t, 1, summary.Passed)
	require.Equal(t, 1, summary.Total)
	require.Equal(t, 100.0, summary.PassedPct)
	require.Equal(t, "DQ Report for tables [sales]", summary.Title)
	require.NotEmpty(t, summary.RunID)
}

func TestFit_FailingCheck(t *testing.T) {
	r := New([]Check{{
		Table:  "sales",
		Metric: metrics.ValueCount{Column: "x", Value: 5},
		Limits: Limits{"count": {2, 10}},
	}})
	require.NoError(t, r.Fit(context.Background(), specRegistry(t)))

	rows, err := r.Ledger()
	require.NoError(t, err)
	require.Equal(t, StatusFailed, rows[0].Status)
	require.Equal(t, 1, rows[0].Values[metrics.KeyCount])

	summary, err := r.Summary()
	require.NoError(t, err)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 0, summary.Passed)
}

func TestFit_MissingTableContinues(t *testing.T) {
	r := New([]Check{
		{Table: "missing", Metric: metrics.RowCount{}, Limits: Limits{"total": {0, 100}}},
		{Table: "sales", Metric: metrics.RowCount{}, Limits: Limits{"total": {0, 100}}},
	})
	require.NoError(t, r.Fit(context.Background(), specRegistry(t)))

	rows, err := r.Ledger()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, StatusError, rows[0].Status)
	require.Contains(t, rows[0].Error, `table "missing" not registered`)
	require.Nil(t, rows[0].Values)
	require.Equal(t, StatusPassed, rows[1].Status)

	summary, err := r.Summary()
	require.NoError(t, err)
	require.Equal(t, 1, summary.Errors)
	require.Equal(t, 1, summary.Passed)
	require.Equal(t, 2, summary.Total)
}

func TestFit_EvaluationErrorRow(t *testing.T) {
	r := New([]Check{{
		Table:  "sales",
		Metric: metrics.ZeroCount{Column: "nope"},
		Limits: Limits{"delta": {0, 1}},
	}})
	require.NoError(t, r.Fit(context.Background(), specRegistry(t)))

	rows, err := r.Ledger()
	require.NoError(t, err)
	require.Equal(t, StatusError, rows[0].Status)
	require.Contains(t, rows[0].Error, `column "nope" not found`)
	require.Nil(t, rows[0].Values)
}

func TestFit_CounterInvariant(t *testing.T) {
	r := New([]Check{
		{Table: "sales", Metric: metrics.ZeroCount{Column: "x"}, Limits: Limits{"delta": {0.5, 1}}},
		{Table: "sales", Metric: metrics.ValueCount{Column: "x", Value: 5}, Limits: Limits{"count": {2, 10}}},
		{Table: "missing", Metric: metrics.RowCount{}, Limits: Limits{"total": {0, 1}}},
	})
	require.NoError(t, r.Fit(context.Background(), specRegistry(t)))

	summary, err := r.Summary()
	require.NoError(t, err)
	require.Equal(t, summary.Total, summary.Passed+summary.Failed+summary.Errors)
	require.Equal(t, 3, summary.Total)

	rows, err := r.Ledger()
	require.NoError(t, err)
	require.Len(t, rows, summary.Total)

	pctSum := summary.PassedPct + summary.FailedPct + summary.ErrorsPct
	require.InDelta(t, 100.0, pctSum, 0.02)
}

func TestFit_EmptyChecklist(t *testing.T) {
	r := New(nil)
	err := r.Fit(context.Background(), specRegistry(t))
	require.ErrorIs(t, err, ErrEmptyChecklist)
	require.False(t, r.Fitted())
}

func TestFit_UnsupportedTablePropagates(t *testing.T) {
	r := New([]Check{
		{Table: "sales", Metric: metrics.RowCount{}, Limits: Limits{"total": {0, 100}}},
		{Table: "weird", Metric: metrics.RowCount{}, Limits: Limits{"total": {0, 100}}},
	})
	registry := specRegistry(t)
	registry["weird"] = nil

	err := r.Fit(context.Background(), registry)
	var unsupported *metrics.UnsupportedTableError
	require.ErrorAs(t, err, &unsupported)
	require.False(t, r.Fitted())

	_, err = r.Ledger()
	require.ErrorIs(t, err, ErrNotFitted)
}

func TestFit_CanceledContext(t *testing.T) {
	r := New([]Check{{Table: "sales", Metric: metrics.RowCount{}, Limits: Limits{"total": {0, 100}}}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Fit(ctx, specRegistry(t))
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, r.Fitted())
}

func TestFit_Idempotent(t *testing.T) {
	checks := []Check{
		{Table: "sales", Metric: metrics.ZeroCount{Column: "x"}, Limits: Limits{"delta": {0.5, 1}}},
		{Table: "sales", Metric: metrics.DuplicateCount{Columns: []string{"x"}}, Limits: Limits{"count": {0, 2}}},
	}
	registry := specRegistry(t)

	r := New(checks)
	require.NoError(t, r.Fit(context.Background(), registry))
	firstRows, err := r.Ledger()
	require.NoError(t, err)
	firstSummary, err := r.Summary()
	require.NoError(t, err)

	require.NoError(t, r.Fit(context.Background(), registry))
	secondRows, err := r.Ledger()
	require.NoError(t, err)
	secondSummary, err := r.Summary()
	require.NoError(t, err)

	require.Equal(t, firstRows, secondRows)
	// Run identity and timing regenerate per fit; the counters must not.
	firstSummary.RunID, secondSummary.RunID = "", ""
	firstSummary.DurationMs, secondSummary.DurationMs = 0, 0
	require.Equal(t, firstSummary, secondSummary)
}

func TestFit_RefitOverwrites(t *testing.T) {
	registry := specRegistry(t)
	r := New([]Check{{Table: "sales", Metric: metrics.ZeroCount{Column: "x"}, Limits: Limits{"delta": {0.5, 1}}}})
	require.NoError(t, r.Fit(context.Background(), registry))
	summary, err := r.Summary()
	require.NoError(t, err)
	require.Equal(t, 1, summary.Passed)

	// Second fit against a registry where the check can no longer pass.
	empty := map[string]table.Table{}
	require.NoError(t, r.Fit(context.Background(), empty))
	summary, err = r.Summary()
	require.NoError(t, err)
	require.Equal(t, 0, summary.Passed)
	require.Equal(t, 1, summary.Errors)
}

func TestFit_LedgerPreservesChecklistOrder(t *testing.T) {
	tbl := table.FromRecords([]string{"v"}, []map[string]any{{"v": 1.0}})
	registry := map[string]table.Table{"b": tbl, "a": tbl}
	r := New([]Check{
		{Table: "b", Metric: metrics.RowCount{}, Limits: Limits{"total": {0, 10}}},
		{Table: "a", Metric: metrics.RowCount{}, Limits: Limits{"total": {0, 10}}},
		{Table: "b", Metric: metrics.ZeroCount{Column: "v"}, Limits: Limits{"count": {0, 10}}},
	})
	require.NoError(t, r.Fit(context.Background(), registry))

	rows, err := r.Ledger()
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "b"}, []string{rows[0].Table, rows[1].Table, rows[2].Table})

	summary, err := r.Summary()
	require.NoError(t, err)
	require.Equal(t, "DQ Report for tables [a, b]", summary.Title)
}

func TestFit_ConcurrentMatchesSequential(t *testing.T) {
	registry := specRegistry(t)
	checks := []Check{
		{Table: "sales", Metric: metrics.ZeroCount{Column: "x"}, Limits: Limits{"delta": {0.5, 1}}},
		{Table: "missing", Metric: metrics.RowCount{}, Limits: Limits{"total": {0, 10}}},
		{Table: "sales", Metric: metrics.ValueCount{Column: "x", Value: 5}, Limits: Limits{"count": {2, 10}}},
		{Table: "sales", Metric: metrics.DuplicateCount{Columns: []string{"x"}}, Limits: Limits{"count": {0, 2}}},
		{Table: "sales", Metric: metrics.ZeroCount{Column: "nope"}, Limits: Limits{"delta": {0, 1}}},
	}

	sequential := New(checks)
	require.NoError(t, sequential.Fit(context.Background(), registry))
	concurrent := New(checks, WithWorkers(4))
	require.NoError(t, concurrent.Fit(context.Background(), registry))

	seqRows, err := sequential.Ledger()
	require.NoError(t, err)
	conRows, err := concurrent.Ledger()
	require.NoError(t, err)
	require.Equal(t, seqRows, conRows)

	seqText, err := sequential.Render()
	require.NoError(t, err)
	conText, err := concurrent.Render()
	require.NoError(t, err)
	require.Equal(t, seqText, conText)
}

func TestFit_ConcurrentPropagatesUnsupported(t *testing.T) {
	registry := specRegistry(t)
	registry["weird"] = nil
	r := New([]Check{
		{Table: "sales", Metric: metrics.RowCount{}, Limits: Limits{"total": {0, 10}}},
		{Table: "weird", Metric: metrics.RowCount{}, Limits: Limits{"total": {0, 10}}},
	}, WithWorkers(2))

	err := r.Fit(context.Background(), registry)
	var unsupported *metrics.UnsupportedTableError
	require.ErrorAs(t, err, &unsupported)
	require.False(t, r.Fitted())
}

func TestNotFittedAccessors(t *testing.T) {
	r := New([]Check{{Table: "t", Metric: metrics.RowCount{}, Limits: Limits{}}})
	require.False(t, r.Fitted())

	_, err := r.Render()
	require.ErrorIs(t, err, ErrNotFitted)
	_, err = r.Summary()
	require.ErrorIs(t, err, ErrNotFitted)
	_, err = r.Ledger()
	require.ErrorIs(t, err, ErrNotFitted)
	_, err = r.Snapshot()
	require.ErrorIs(t, err, ErrNotFitted)
}

func TestClassify_Boundaries(t *testing.T) {
	res := metrics.Result{"delta": 0.5}
	require.Equal(t, StatusPassed, classify(res, Limits{"delta": {0.5, 1.0}}))
	require.Equal(t, StatusPassed, classify(res, Limits{"delta": {0.0, 0.5}}))
	require.Equal(t, StatusFailed, classify(res, Limits{"delta": {0.51, 1.0}}))
}

func TestClassify_MissingAndNonNumericKeys(t *testing.T) {
	require.Equal(t, StatusFailed, classify(metrics.Result{"total": 3}, Limits{"count": {0, 1}}))
	require.Equal(t, StatusFailed, classify(metrics.Result{"lag": nil}, Limits{"lag": {0, 3}}))
	require.Equal(t, StatusFailed, classify(metrics.Result{"delta": math.NaN()}, Limits{"delta": {0, 1}}))
	require.Equal(t, StatusFailed, classify(metrics.Result{"last_day": "2026-08-20"}, Limits{"last_day": {0, 1}}))
}

func TestClassify_EmptyLimitsAlwaysPass(t *testing.T) {
	require.Equal(t, StatusPassed, classify(metrics.Result{"total": 1}, Limits{}))
}

func TestLimitsString(t *testing.T) {
	l := Limits{"delta": {0, 0.3}, "count": {2, 10}}
	require.Equal(t, "{count: [2, 10], delta: [0, 0.3]}", l.String())
	require.Equal(t, "{}", Limits{}.String())
}

func TestSnapshot(t *testing.T) {
	r := New([]Check{{Table: "sales", Metric: metrics.RowCount{}, Limits: Limits{"total": {0, 10}}}})
	require.NoError(t, r.Fit(context.Background(), specRegistry(t)))

	snap, err := r.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Checks, 1)
	require.Equal(t, snap.Summary.Total, len(snap.Checks))
}

func TestEvalOne_ContainedVsPropagated(t *testing.T) {
	tables := specRegistry(t)

	row, err := evalOne(context.Background(), Check{
		Table: "sales", Metric: metrics.ZeroCount{Column: "gone"}, Limits: Limits{},
	}, tables)
	require.NoError(t, err)
	require.Equal(t, StatusError, row.Status)

	tables["weird"] = nil
	_, err = evalOne(context.Background(), Check{
		Table: "weird", Metric: metrics.RowCount{}, Limits: Limits{},
	}, tables)
	require.Error(t, err)
	var unsupported *metrics.UnsupportedTableError
	require.True(t, errors.As(err, &unsupported))
}
