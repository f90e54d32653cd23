package metrics

import (
	"context"
	"fmt"
	"sort"

	"github.com/valfrank/SimulatorML/pkg/statistics"
	"github.com/valfrank/SimulatorML/pkg/table"
)

// ConfidenceBounds computes a two-sided confidence interval over a numeric
// column: lcb at quantile (1-level)/2 and ucb at 1-(1-level)/2, with
// linear interpolation. Nulls are skipped; a column with no numeric values
// is an evaluation error. Both strategies collect and sort the full column
// so their bounds are identical, not approximate.
type ConfidenceBounds struct {
	Column string
	Level  float64
}

func (m ConfidenceBounds) String() string {
	return fmt.Sprintf("confidence_bounds(column=%s, level=%g)", m.Column, m.Level)
}

func (m ConfidenceBounds) Eval(ctx context.Context, t table.Table) (Result, error) {
	return eval(ctx, t, m.evalLocal, m.evalPartitioned)
}

func (m ConfidenceBounds) evalLocal(tt *table.Local) (Result, error) {
	col, err := columnOf(tt, m.Column)
	if err != nil {
		return nil, err
	}
	values, err := m.collect(nil, col)
	if err != nil {
		return nil, err
	}
	return m.bounds(values)
}

func (m ConfidenceBounds) evalPartitioned(ctx context.Context, tt *table.Partitioned) (Result, error) {
	var values []float64
	err := tt.Scan(ctx, func(chunk *table.Local) error {
		col, err := columnOf(chunk, m.Column)
		if err != nil {
			return err
		}
		values, err = m.collect(values, col)
		return err
	})
	if err != nil {
		return nil, err
	}
	return m.bounds(values)
}

func (m ConfidenceBounds) collect(dst []float64, col []any) ([]float64, error) {
	for _, v := range col {
		if table.IsNull(v) {
			continue
		}
		f, err := numericCell(m.Column, v)
		if err != nil {
			return nil, err
		}
		dst = append(dst, f)
	}
	return dst, nil
}

func (m ConfidenceBounds) bounds(values []float64) (Result, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no numeric values in column %q", m.Column)
	}
	sort.Float64s(values)
	alpha := (1.0 - m.Level) / 2.0
	return Result{
		KeyLCB: statistics.QuantileSorted(values, alpha),
		KeyUCB: statistics.QuantileSorted(values, 1.0-alpha),
	}, nil
}
