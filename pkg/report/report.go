// Package report evaluates a checklist of data-quality checks against a
// registry of named tables and aggregates the outcomes into a ledger with
// summary counters, renderable as text.
package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valfrank/SimulatorML/pkg/metrics"
	"github.com/valfrank/SimulatorML/pkg/table"
)

// Ledger row statuses.
const (
	StatusPassed = "."
	StatusFailed = "F"
	StatusError  = "E"
)

var (
	// ErrNotFitted is returned by accessors of a report that has not been
	// fitted yet.
	ErrNotFitted = errors.New("report is not fitted, call Fit first")
	// ErrEmptyChecklist rejects a fit over zero checks, whose percentages
	// would be undefined.
	ErrEmptyChecklist = errors.New("checklist is empty")
)

// Limits maps result keys to inclusive [lower, upper] ranges. A key absent
// from a metric's result, non-numeric, or outside its range fails the
// check.
type Limits map[string][2]float64

// String renders limits with sorted keys, e.g. {count: [2, 10]}.
func (l Limits) String() string {
	keys := make([]string, 0, len(l))
	for key := range l {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		bounds := l[key]
		fmt.Fprintf(&b, "%s: [%g, %g]", key, bounds[0], bounds[1])
	}
	b.WriteString("}")
	return b.String()
}

// Check is one checklist entry: evaluate Metric against the named table
// and hold the result to Limits.
type Check struct {
	Table  string
	Metric metrics.Metric
	Limits Limits
}

// Row is one ledger entry of a fitted report.
type Row struct {
	Table  string         `json:"table"`
	Metric string         `json:"metric"`
	Limits string         `json:"limits"`
	Values metrics.Result `json:"values,omitempty"`
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
}

// Summary holds the aggregate counters of a fitted report.
type Summary struct {
	Title      string  `json:"title"`
	RunID      string  `json:"run_id"`
	Passed     int     `json:"passed"`
	Failed     int     `json:"failed"`
	Errors     int     `json:"errors"`
	Total      int     `json:"total"`
	PassedPct  float64 `json:"passed_pct"`
	FailedPct  float64 `json:"failed_pct"`
	ErrorsPct  float64 `json:"errors_pct"`
	DurationMs int64   `json:"duration_ms"`
}

// Snapshot is the full serializable state of a fitted report.
type Snapshot struct {
	Summary Summary `json:"summary"`
	Checks  []Row   `json:"checks"`
}

// Report runs a checklist and holds the fitted state. The lifecycle is
// single-shot: Fit moves the report from unfitted to fitted, and fitting
// again replaces all prior state. A failed Fit leaves the prior state
// untouched.
type Report struct {
	checklist []Check
	workers   int

	state *fitState
}

type fitState struct {
	summary Summary
	rows    []Row
}

// Option configures a Report.
type Option func(*Report)

// WithWorkers enables concurrent evaluation with up to n workers. Entries
// share no mutable state, so the only observable difference from the
// sequential reference is speed: the ledger is re-sorted to checklist
// order. Values below 2 keep the sequential path.
func WithWorkers(n int) Option {
	return func(r *Report) {
		r.workers = n
	}
}

// New builds an unfitted report over the given checklist.
func New(checklist []Check, opts ...Option) *Report {
	r := &Report{checklist: append([]Check(nil), checklist...)}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Fitted reports whether Fit has completed successfully.
func (r *Report) Fitted() bool { return r.state != nil }

// Ledger returns the per-check rows of a fitted report in checklist order.
func (r *Report) Ledger() ([]Row, error) {
	if r.state == nil {
		return nil, ErrNotFitted
	}
	return append([]Row(nil), r.state.rows...), nil
}

// Summary returns the aggregate counters of a fitted report.
func (r *Report) Summary() (Summary, error) {
	if r.state == nil {
		return Summary{}, ErrNotFitted
	}
	return r.state.summary, nil
}

// Snapshot returns the full serializable state of a fitted report.
func (r *Report) Snapshot() (Snapshot, error) {
	if r.state == nil {
		return Snapshot{}, ErrNotFitted
	}
	return Snapshot{Summary: r.state.summary, Checks: append([]Row(nil), r.state.rows...)}, nil
}

// Fit evaluates every checklist entry against tables and stores the
// outcome. Per-entry failures (unknown table, evaluation errors) become E
// rows and never abort the remaining entries. Structural misuse does
// abort: an empty checklist, a canceled context, or a table of an
// unsupported representation propagates and the report keeps its previous
// state.
func (r *Report) Fit(ctx context.Context, tables map[string]table.Table) error {
	if len(r.checklist) == 0 {
		return ErrEmptyChecklist
	}

	start := time.Now()
	var rows []Row
	var err error
	if r.workers > 1 {
		rows, err = r.runConcurrent(ctx, tables)
	} else {
		rows, err = r.runSequential(ctx, tables)
	}
	if err != nil {
		return err
	}

	summary := Summary{
		Title: title(r.checklist),
		RunID: uuid.NewString(),
		Total: len(rows),
	}
	for _, row := range rows {
		switch row.Status {
		case StatusPassed:
			summary.Passed++
		case StatusFailed:
			summary.Failed++
		case StatusError:
			summary.Errors++
		}
	}
	total := float64(summary.Total)
	summary.PassedPct = round2(float64(summary.Passed) * 100 / total)
	summary.FailedPct = round2(float64(summary.Failed) * 100 / total)
	summary.ErrorsPct = round2(float64(summary.Errors) * 100 / total)
	summary.DurationMs = time.Since(start).Milliseconds()

	r.state = &fitState{summary: summary, rows: rows}
	return nil
}

func (r *Report) runSequential(ctx context.Context, tables map[string]table.Table) ([]Row, error) {
	rows := make([]Row, 0, len(r.checklist))
	for _, check := range r.checklist {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := evalOne(ctx, check, tables)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *Report) runConcurrent(ctx context.Context, tables map[string]table.Table) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		index int
		row   Row
		err   error
	}

	resultChan := make(chan result, len(r.checklist))
	semaphore := make(chan struct{}, r.workers)

	var wg sync.WaitGroup
	for i, check := range r.checklist {
		wg.Add(1)
		go func(idx int, check Check) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			row, err := evalOne(ctx, check, tables)
			resultChan <- result{index: idx, row: row, err: err}
		}(i, check)
	}
	wg.Wait()
	close(resultChan)

	// Re-sort to checklist order so the ledger matches the sequential
	// reference; the lowest-index error wins for determinism.
	rows := make([]Row, len(r.checklist))
	errIndex := len(r.checklist)
	var firstErr error
	for res := range resultChan {
		if res.err != nil {
			if res.index < errIndex {
				errIndex = res.index
				firstErr = res.err
			}
			continue
		}
		rows[res.index] = res.row
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return rows, nil
}

// evalOne produces the ledger row for a single check. The returned error
// is nil for contained failures; only unsupported table representations
// and context cancellation propagate.
func evalOne(ctx context.Context, check Check, tables map[string]table.Table) (Row, error) {
	row := Row{
		Table:  check.Table,
		Metric: check.Metric.String(),
		Limits: check.Limits.String(),
	}

	var res metrics.Result
	var evalErr error
	tbl, ok := tables[check.Table]
	if !ok {
		evalErr = fmt.Errorf("table %q not registered", check.Table)
	} else {
		res, evalErr = check.Metric.Eval(ctx, tbl)
	}

	if evalErr != nil {
		var unsupported *metrics.UnsupportedTableError
		if errors.As(evalErr, &unsupported) ||
			errors.Is(evalErr, context.Canceled) ||
			errors.Is(evalErr, context.DeadlineExceeded) {
			return Row{}, evalErr
		}
		row.Status = StatusError
		row.Error = evalErr.Error()
		return row, nil
	}

	row.Values = res
	row.Status = classify(res, check.Limits)
	return row, nil
}

// classify checks every limit key in sorted order, short-circuiting at the
// first failure. A missing or non-numeric result value fails the check.
func classify(res metrics.Result, limits Limits) string {
	keys := make([]string, 0, len(limits))
	for key := range limits {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		bounds := limits[key]
		v, ok := res[key]
		if !ok {
			return StatusFailed
		}
		f, ok := table.AsFloat(v)
		if !ok {
			return StatusFailed
		}
		if f < bounds[0] || f > bounds[1] {
			return StatusFailed
		}
	}
	return StatusPassed
}

func title(checklist []Check) string {
	seen := make(map[string]bool)
	names := make([]string, 0, len(checklist))
	for _, check := range checklist {
		if !seen[check.Table] {
			seen[check.Table] = true
			names = append(names, check.Table)
		}
	}
	sort.Strings(names)
	return fmt.Sprintf("DQ Report for tables [%s]", strings.Join(names, ", "))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
