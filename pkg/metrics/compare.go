package metrics

import (
	"context"
	"fmt"

	"github.com/valfrank/SimulatorML/pkg/table"
)

// BelowColumn counts rows where column x is below column y, strictly or
// inclusively. Rows with a null in either column are excluded from both
// the total and the match count, in both strategies, so the two backends
// stay in exact agreement.
type BelowColumn struct {
	X      string
	Y      string
	Strict bool
}

func (m BelowColumn) String() string {
	return fmt.Sprintf("below_column(x=%s, y=%s, strict=%t)", m.X, m.Y, m.Strict)
}

func (m BelowColumn) Eval(ctx context.Context, t table.Table) (Result, error) {
	return eval(ctx, t, m.evalLocal, m.evalPartitioned)
}

func (m BelowColumn) evalLocal(tt *table.Local) (Result, error) {
	n, k, err := m.countRows(tt)
	if err != nil {
		return nil, err
	}
	return countingResult(n, k)
}

func (m BelowColumn) evalPartitioned(ctx context.Context, tt *table.Partitioned) (Result, error) {
	n, k := 0, 0
	err := tt.Scan(ctx, func(chunk *table.Local) error {
		cn, ck, err := m.countRows(chunk)
		if err != nil {
			return err
		}
		n += cn
		k += ck
		return nil
	})
	if err != nil {
		return nil, err
	}
	return countingResult(n, k)
}

func (m BelowColumn) countRows(tt *table.Local) (int, int, error) {
	xs, err := columnOf(tt, m.X)
	if err != nil {
		return 0, 0, err
	}
	ys, err := columnOf(tt, m.Y)
	if err != nil {
		return 0, 0, err
	}
	n, k := 0, 0
	for i := range xs {
		if table.IsNull(xs[i]) || table.IsNull(ys[i]) {
			continue
		}
		fx, err := numericCell(m.X, xs[i])
		if err != nil {
			return 0, 0, err
		}
		fy, err := numericCell(m.Y, ys[i])
		if err != nil {
			return 0, 0, err
		}
		n++
		if below(fx, fy, m.Strict) {
			k++
		}
	}
	return n, k, nil
}

// RatioBelow counts rows where x/y is below column z. Rows with a null
// among x, y or z are excluded from both the total and the match count. A
// zero denominator follows IEEE division (an infinite or NaN ratio simply
// fails or passes the comparison), it is not an error.
type RatioBelow struct {
	X      string
	Y      string
	Z      string
	Strict bool
}

func (m RatioBelow) String() string {
	return fmt.Sprintf("ratio_below(x=%s, y=%s, z=%s, strict=%t)", m.X, m.Y, m.Z, m.Strict)
}

func (m RatioBelow) Eval(ctx context.Context, t table.Table) (Result, error) {
	return eval(ctx, t, m.evalLocal, m.evalPartitioned)
}

func (m RatioBelow) evalLocal(tt *table.Local) (Result, error) {
	n, k, err := m.countRows(tt)
	if err != nil {
		return nil, err
	}
	return countingResult(n, k)
}

func (m RatioBelow) evalPartitioned(ctx context.Context, tt *table.Partitioned) (Result, error) {
	n, k := 0, 0
	err := tt.Scan(ctx, func(chunk *table.Local) error {
		cn, ck, err := m.countRows(chunk)
		if err != nil {
			return err
		}
		n += cn
		k += ck
		return nil
	})
	if err != nil {
		return nil, err
	}
	return countingResult(n, k)
}

func (m RatioBelow) countRows(tt *table.Local) (int, int, error) {
	xs, err := columnOf(tt, m.X)
	if err != nil {
		return 0, 0, err
	}
	ys, err := columnOf(tt, m.Y)
	if err != nil {
		return 0, 0, err
	}
	zs, err := columnOf(tt, m.Z)
	if err != nil {
		return 0, 0, err
	}
	n, k := 0, 0
	for i := range xs {
		if table.IsNull(xs[i]) || table.IsNull(ys[i]) || table.IsNull(zs[i]) {
			continue
		}
		fx, err := numericCell(m.X, xs[i])
		if err != nil {
			return 0, 0, err
		}
		fy, err := numericCell(m.Y, ys[i])
		if err != nil {
			return 0, 0, err
		}
		fz, err := numericCell(m.Z, zs[i])
		if err != nil {
			return 0, 0, err
		}
		n++
		if below(fx/fy, fz, m.Strict) {
			k++
		}
	}
	return n, k, nil
}

func numericCell(column string, v any) (float64, error) {
	f, ok := table.AsFloat(v)
	if !ok {
		return 0, fmt.Errorf("column %q contains non-numeric value %v", column, v)
	}
	return f, nil
}
