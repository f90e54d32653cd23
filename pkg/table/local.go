package table

import "fmt"

// Local is a fully materialized table: named columns of equal length held
// in memory, with random access and a size known without any computation.
// Values are read-only once constructed.
type Local struct {
	names []string
	cols  map[string][]any
	rows  int
}

// FromColumns builds a Local table from a column order and per-column value
// slices. Every named column must be present in data and all columns must
// have the same length.
func FromColumns(names []string, data map[string][]any) (*Local, error) {
	t := &Local{
		names: append([]string(nil), names...),
		cols:  make(map[string][]any, len(names)),
	}
	for i, name := range names {
		col, ok := data[name]
		if !ok {
			return nil, fmt.Errorf("column %q missing from data", name)
		}
		if i == 0 {
			t.rows = len(col)
		} else if len(col) != t.rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", name, len(col), t.rows)
		}
		t.cols[name] = col
	}
	return t, nil
}

// FromRecords builds a Local table from row-oriented records. A key absent
// from a record yields a null cell.
func FromRecords(names []string, records []map[string]any) *Local {
	cols := make(map[string][]any, len(names))
	for _, name := range names {
		col := make([]any, len(records))
		for i, rec := range records {
			col[i] = rec[name]
		}
		cols[name] = col
	}
	return &Local{
		names: append([]string(nil), names...),
		cols:  cols,
		rows:  len(records),
	}
}

// Kind reports KindLocal.
func (t *Local) Kind() Kind { return KindLocal }

func (t *Local) sealed() {}

// Len returns the number of rows.
func (t *Local) Len() int { return t.rows }

// Columns returns the column names in their declared order.
func (t *Local) Columns() []string {
	return append([]string(nil), t.names...)
}

// Column returns the values of the named column. The slice is shared, not
// copied; callers must not modify it.
func (t *Local) Column(name string) ([]any, bool) {
	col, ok := t.cols[name]
	return col, ok
}
