package metrics

import (
	"context"
	"fmt"

	"github.com/valfrank/SimulatorML/pkg/table"
)

// RowCount reports the table's total number of rows.
type RowCount struct{}

func (m RowCount) String() string { return "row_count()" }

func (m RowCount) Eval(ctx context.Context, t table.Table) (Result, error) {
	return eval(ctx, t,
		func(tt *table.Local) (Result, error) {
			return Result{KeyTotal: tt.Len()}, nil
		},
		func(ctx context.Context, tt *table.Partitioned) (Result, error) {
			n, err := tt.Count(ctx)
			if err != nil {
				return nil, err
			}
			return Result{KeyTotal: n}, nil
		},
	)
}

// ZeroCount counts rows whose column value equals zero. Nulls and
// non-numeric cells never match.
type ZeroCount struct {
	Column string
}

func (m ZeroCount) String() string {
	return fmt.Sprintf("zero_count(column=%s)", m.Column)
}

func (m ZeroCount) Eval(ctx context.Context, t table.Table) (Result, error) {
	return eval(ctx, t, m.evalLocal, m.evalPartitioned)
}

func (m ZeroCount) evalLocal(tt *table.Local) (Result, error) {
	col, err := columnOf(tt, m.Column)
	if err != nil {
		return nil, err
	}
	return countingResult(tt.Len(), countZeros(col))
}

func (m ZeroCount) evalPartitioned(ctx context.Context, tt *table.Partitioned) (Result, error) {
	n, k := 0, 0
	err := tt.Scan(ctx, func(chunk *table.Local) error {
		col, err := columnOf(chunk, m.Column)
		if err != nil {
			return err
		}
		n += chunk.Len()
		k += countZeros(col)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return countingResult(n, k)
}

func countZeros(col []any) int {
	k := 0
	for _, v := range col {
		if f, ok := table.AsFloat(v); ok && f == 0 {
			k++
		}
	}
	return k
}

// ValueCount counts rows whose column equals a literal value. Numbers
// compare numerically regardless of their Go type, strings and booleans
// compare exactly, nulls never match, and mismatched types never match.
type ValueCount struct {
	Column string
	Value  any
}

func (m ValueCount) String() string {
	return fmt.Sprintf("value_count(column=%s, value=%v)", m.Column, m.Value)
}

func (m ValueCount) Eval(ctx context.Context, t table.Table) (Result, error) {
	return eval(ctx, t, m.evalLocal, m.evalPartitioned)
}

func (m ValueCount) evalLocal(tt *table.Local) (Result, error) {
	col, err := columnOf(tt, m.Column)
	if err != nil {
		return nil, err
	}
	return countingResult(tt.Len(), countEqual(col, m.Value))
}

func (m ValueCount) evalPartitioned(ctx context.Context, tt *table.Partitioned) (Result, error) {
	n, k := 0, 0
	err := tt.Scan(ctx, func(chunk *table.Local) error {
		col, err := columnOf(chunk, m.Column)
		if err != nil {
			return err
		}
		n += chunk.Len()
		k += countEqual(col, m.Value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return countingResult(n, k)
}

func countEqual(col []any, target any) int {
	k := 0
	for _, v := range col {
		if cellEquals(v, target) {
			k++
		}
	}
	return k
}

func cellEquals(v, target any) bool {
	if table.IsNull(v) || table.IsNull(target) {
		return false
	}
	if tf, ok := table.AsFloat(target); ok {
		f, ok := table.AsFloat(v)
		return ok && f == tf
	}
	switch tv := target.(type) {
	case string:
		s, ok := v.(string)
		return ok && s == tv
	case bool:
		b, ok := v.(bool)
		return ok && b == tv
	default:
		return false
	}
}

// BelowValue counts rows whose column value is below a threshold, strictly
// or inclusively. Nulls are excluded from the match count but stay in the
// total; a non-numeric non-null cell is an evaluation error.
type BelowValue struct {
	Column string
	Value  float64
	Strict bool
}

func (m BelowValue) String() string {
	return fmt.Sprintf("below_value(column=%s, value=%v, strict=%t)", m.Column, m.Value, m.Strict)
}

func (m BelowValue) Eval(ctx context.Context, t table.Table) (Result, error) {
	return eval(ctx, t, m.evalLocal, m.evalPartitioned)
}

func (m BelowValue) evalLocal(tt *table.Local) (Result, error) {
	col, err := columnOf(tt, m.Column)
	if err != nil {
		return nil, err
	}
	k, err := m.countBelow(col)
	if err != nil {
		return nil, err
	}
	return countingResult(tt.Len(), k)
}

func (m BelowValue) evalPartitioned(ctx context.Context, tt *table.Partitioned) (Result, error) {
	n, k := 0, 0
	err := tt.Scan(ctx, func(chunk *table.Local) error {
		col, err := columnOf(chunk, m.Column)
		if err != nil {
			return err
		}
		ck, err := m.countBelow(col)
		if err != nil {
			return err
		}
		n += chunk.Len()
		k += ck
		return nil
	})
	if err != nil {
		return nil, err
	}
	return countingResult(n, k)
}

func (m BelowValue) countBelow(col []any) (int, error) {
	k := 0
	for _, v := range col {
		if table.IsNull(v) {
			continue
		}
		f, err := numericCell(m.Column, v)
		if err != nil {
			return 0, err
		}
		if below(f, m.Value, m.Strict) {
			k++
		}
	}
	return k, nil
}

func below(a, b float64, strict bool) bool {
	if strict {
		return a < b
	}
	return a <= b
}
