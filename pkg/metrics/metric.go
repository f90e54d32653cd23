// Package metrics implements the data-quality metric family. Each metric
// is an immutable value object that evaluates against a table and returns
// a small map of named scalars. Every metric carries two execution
// strategies, one walking a materialized Local table and one folding
// partial aggregates over the chunks of a Partitioned table; both must
// agree numerically on identical data so that a checklist passes or fails
// the same way regardless of backend.
package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/valfrank/SimulatorML/pkg/table"
)

// Result keys. The vocabulary depends on the metric kind: row_count yields
// only total; the counting metrics yield total, count and delta; the
// confidence bound yields lcb and ucb; date_lag yields today, last_day
// and lag.
const (
	KeyTotal   = "total"
	KeyCount   = "count"
	KeyDelta   = "delta"
	KeyLCB     = "lcb"
	KeyUCB     = "ucb"
	KeyToday   = "today"
	KeyLastDay = "last_day"
	KeyLag     = "lag"
)

// Result maps result keys to scalar values (ints, floats, formatted dates,
// or nil when a value could not be derived).
type Result map[string]any

// Metric is a stateless data-quality check. Evaluating the same metric
// twice against the same table yields the same result.
type Metric interface {
	// String returns the human-readable description used verbatim in
	// report ledgers, encoding the kind and its parameters.
	String() string

	// Eval computes the metric against t, routing to the strategy that
	// matches the table's representation.
	Eval(ctx context.Context, t table.Table) (Result, error)
}

// UnsupportedTableError reports a table whose runtime representation is
// neither Local nor Partitioned. This is a programming error, not a data
// quality finding, and the report evaluator propagates it instead of
// recording an error row.
type UnsupportedTableError struct {
	Table table.Table
}

func (e *UnsupportedTableError) Error() string {
	return fmt.Sprintf("unsupported table representation %T", e.Table)
}

// eval dispatches t to the matching strategy.
func eval(
	ctx context.Context,
	t table.Table,
	local func(*table.Local) (Result, error),
	partitioned func(context.Context, *table.Partitioned) (Result, error),
) (Result, error) {
	switch tt := t.(type) {
	case *table.Local:
		return local(tt)
	case *table.Partitioned:
		return partitioned(ctx, tt)
	default:
		return nil, &UnsupportedTableError{Table: t}
	}
}

// columnOf fetches a column or fails with the error text recorded in
// report ledgers.
func columnOf(t *table.Local, name string) ([]any, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	return col, nil
}

// countingResult assembles the shared {total, count, delta} shape of the
// counting metrics. delta is count/total, so a zero total is an
// evaluation error rather than a silent NaN.
func countingResult(total, count int) (Result, error) {
	if total == 0 {
		return nil, errors.New("division by zero: total count is 0")
	}
	return Result{
		KeyTotal: total,
		KeyCount: count,
		KeyDelta: float64(count) / float64(total),
	}, nil
}
