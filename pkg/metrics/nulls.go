package metrics

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/valfrank/SimulatorML/pkg/table"
)

// Null-aggregation modes for NullCount.
const (
	ModeAny = "any"
	ModeAll = "all"
)

// NullCount counts rows with null cells among the given columns. Mode
// "any" flags a row when at least one listed column is null, "all" only
// when every listed column is null.
type NullCount struct {
	Columns []string
	Mode    string
}

func (m NullCount) String() string {
	return fmt.Sprintf("null_count(columns=%s, mode=%s)", fmtColumns(m.Columns), m.Mode)
}

func (m NullCount) Eval(ctx context.Context, t table.Table) (Result, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	return eval(ctx, t, m.evalLocal, m.evalPartitioned)
}

func (m NullCount) validate() error {
	if len(m.Columns) == 0 {
		return fmt.Errorf("null_count requires at least one column")
	}
	if m.Mode != ModeAny && m.Mode != ModeAll {
		return fmt.Errorf("unknown null aggregation mode %q", m.Mode)
	}
	return nil
}

func (m NullCount) evalLocal(tt *table.Local) (Result, error) {
	cols, err := fetchColumns(tt, m.Columns)
	if err != nil {
		return nil, err
	}
	return countingResult(tt.Len(), m.countNullRows(cols, tt.Len()))
}

func (m NullCount) evalPartitioned(ctx context.Context, tt *table.Partitioned) (Result, error) {
	n, k := 0, 0
	err := tt.Scan(ctx, func(chunk *table.Local) error {
		cols, err := fetchColumns(chunk, m.Columns)
		if err != nil {
			return err
		}
		n += chunk.Len()
		k += m.countNullRows(cols, chunk.Len())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return countingResult(n, k)
}

func (m NullCount) countNullRows(cols [][]any, rows int) int {
	k := 0
	for i := 0; i < rows; i++ {
		nulls := 0
		for _, col := range cols {
			if table.IsNull(col[i]) {
				nulls++
			}
		}
		switch m.Mode {
		case ModeAny:
			if nulls > 0 {
				k++
			}
		case ModeAll:
			if nulls == len(cols) {
				k++
			}
		}
	}
	return k
}

// DuplicateCount counts rows participating in a duplicated key, where the
// key is the tuple of the given columns. A row counts when at least one
// other row shares its key, so a key occurring three times contributes
// three. Null cells group together as a single key value.
type DuplicateCount struct {
	Columns []string
}

func (m DuplicateCount) String() string {
	return fmt.Sprintf("duplicate_count(columns=%s)", fmtColumns(m.Columns))
}

func (m DuplicateCount) Eval(ctx context.Context, t table.Table) (Result, error) {
	if len(m.Columns) == 0 {
		return nil, fmt.Errorf("duplicate_count requires at least one column")
	}
	return eval(ctx, t, m.evalLocal, m.evalPartitioned)
}

func (m DuplicateCount) evalLocal(tt *table.Local) (Result, error) {
	cols, err := fetchColumns(tt, m.Columns)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]int)
	accumulateKeys(keys, cols, tt.Len())
	return countingResult(tt.Len(), countDuplicated(keys))
}

func (m DuplicateCount) evalPartitioned(ctx context.Context, tt *table.Partitioned) (Result, error) {
	// Key counts merge across partitions so duplicates spanning chunk
	// boundaries are still seen.
	keys := make(map[string]int)
	n := 0
	err := tt.Scan(ctx, func(chunk *table.Local) error {
		cols, err := fetchColumns(chunk, m.Columns)
		if err != nil {
			return err
		}
		accumulateKeys(keys, cols, chunk.Len())
		n += chunk.Len()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return countingResult(n, countDuplicated(keys))
}

func accumulateKeys(keys map[string]int, cols [][]any, rows int) {
	var buf []byte
	for i := 0; i < rows; i++ {
		buf = buf[:0]
		for _, col := range cols {
			buf = appendKeyPart(buf, col[i])
		}
		keys[string(buf)]++
	}
}

func countDuplicated(keys map[string]int) int {
	k := 0
	for _, c := range keys {
		if c >= 2 {
			k += c
		}
	}
	return k
}

// appendKeyPart encodes one cell into a duplicate key. A type prefix keeps
// values of different types from colliding, and numerics normalize through
// float64 so 5 and 5.0 share a key.
func appendKeyPart(dst []byte, v any) []byte {
	switch {
	case table.IsNull(v):
		dst = append(dst, 0x00)
	default:
		if f, ok := table.AsFloat(v); ok {
			dst = append(dst, 'n')
			dst = strconv.AppendFloat(dst, f, 'g', -1, 64)
		} else if s, ok := v.(string); ok {
			dst = append(dst, 's')
			dst = append(dst, s...)
		} else if b, ok := v.(bool); ok {
			dst = append(dst, 'b')
			dst = strconv.AppendBool(dst, b)
		} else {
			dst = append(dst, 'o')
			dst = fmt.Append(dst, v)
		}
	}
	return append(dst, 0x1f)
}

func fetchColumns(t *table.Local, names []string) ([][]any, error) {
	cols := make([][]any, len(names))
	for i, name := range names {
		col, err := columnOf(t, name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return cols, nil
}

func fmtColumns(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}
