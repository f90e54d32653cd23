package metrics

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/valfrank/SimulatorML/pkg/table"
)

var (
	_ Metric = RowCount{}
	_ Metric = ZeroCount{}
	_ Metric = NullCount{}
	_ Metric = DuplicateCount{}
	_ Metric = ValueCount{}
	_ Metric = BelowValue{}
	_ Metric = BelowColumn{}
	_ Metric = RatioBelow{}
	_ Metric = ConfidenceBounds{}
	_ Metric = DateLag{}
)

// xyTable is the three-row table shared by the basic metric tests:
// x = [0, 0, 5], y = [1, 2, 1].
func xyTable(t *testing.T) *table.Local {
	t.Helper()
	tbl, err := table.FromColumns([]string{"x", "y"}, map[string][]any{
		"x": {int64(0), int64(0), int64(5)},
		"y": {int64(1), int64(2), int64(1)},
	})
	require.NoError(t, err)
	return tbl
}

func withFixedNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}

func TestRowCount(t *testing.T) {
	res, err := RowCount{}.Eval(context.Background(), xyTable(t))
	require.NoError(t, err)
	require.Equal(t, Result{KeyTotal: 3}, res)
}

func TestRowCount_EmptyTable(t *testing.T) {
	empty := table.FromRecords([]string{"x"}, nil)
	res, err := RowCount{}.Eval(context.Background(), empty)
	require.NoError(t, err)
	require.Equal(t, Result{KeyTotal: 0}, res)
}

func TestZeroCount(t *testing.T) {
	res, err := ZeroCount{Column: "x"}.Eval(context.Background(), xyTable(t))
	require.NoError(t, err)
	require.Equal(t, 3, res[KeyTotal])
	require.Equal(t, 2, res[KeyCount])
	require.Equal(t, 2.0/3.0, res[KeyDelta])
}

func TestZeroCount_NullsNeverMatch(t *testing.T) {
	tbl := table.FromRecords([]string{"x"}, []map[string]any{
		{"x": 0.0}, {"x": nil}, {"x": math.NaN()}, {"x": "0"},
	})
	res, err := ZeroCount{Column: "x"}.Eval(context.Background(), tbl)
	require.NoError(t, err)
	require.Equal(t, 4, res[KeyTotal])
	require.Equal(t, 1, res[KeyCount])
}

func TestZeroCount_MissingColumn(t *testing.T) {
	_, err := ZeroCount{Column: "nope"}.Eval(context.Background(), xyTable(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), `column "nope" not found`)
}

func TestZeroCount_EmptyTableDividesByZero(t *testing.T) {
	empty := table.FromRecords([]string{"x"}, nil)
	_, err := ZeroCount{Column: "x"}.Eval(context.Background(), empty)
	require.Error(t, err)
	require.Contains(t, err.Error(), "division by zero")
}

func TestValueCount(t *testing.T) {
	res, err := ValueCount{Column: "x", Value: 5}.Eval(context.Background(), xyTable(t))
	require.NoError(t, err)
	require.Equal(t, 3, res[KeyTotal])
	require.Equal(t, 1, res[KeyCount])
	require.Equal(t, 1.0/3.0, res[KeyDelta])
}

func TestValueCount_TypeRules(t *testing.T) {
	tbl := table.FromRecords([]string{"v"}, []map[string]any{
		{"v": int64(5)}, {"v": 5.0}, {"v": "5"}, {"v": nil}, {"v": true},
	})
	ctx := context.Background()

	// Numeric targets match numeric cells across Go types, never strings.
	res, err := ValueCount{Column: "v", Value: 5}.Eval(ctx, tbl)
	require.NoError(t, err)
	require.Equal(t, 2, res[KeyCount])

	// String targets match strings only.
	res, err = ValueCount{Column: "v", Value: "5"}.Eval(ctx, tbl)
	require.NoError(t, err)
	require.Equal(t, 1, res[KeyCount])

	res, err = ValueCount{Column: "v", Value: true}.Eval(ctx, tbl)
	require.NoError(t, err)
	require.Equal(t, 1, res[KeyCount])
}

func TestNullCount_Modes(t *testing.T) {
	tbl := table.FromRecords([]string{"a", "b"}, []map[string]any{
		{"a": 1.0, "b": 1.0},
		{"a": nil, "b": 2.0},
		{"a": math.NaN(), "b": nil},
		{"a": nil, "b": nil},
	})
	ctx := context.Background()

	res, err := NullCount{Columns: []string{"a", "b"}, Mode: ModeAny}.Eval(ctx, tbl)
	require.NoError(t, err)
	require.Equal(t, 4, res[KeyTotal])
	require.Equal(t, 3, res[KeyCount])

	res, err = NullCount{Columns: []string{"a", "b"}, Mode: ModeAll}.Eval(ctx, tbl)
	require.NoError(t, err)
	require.Equal(t, 2, res[KeyCount])
}

func TestNullCount_UnknownMode(t *testing.T) {
	_, err := NullCount{Columns: []string{"a"}, Mode: "some"}.Eval(context.Background(), xyTable(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown null aggregation mode "some"`)
}

func TestNullCount_NoColumns(t *testing.T) {
	_, err := NullCount{Mode: ModeAny}.Eval(context.Background(), xyTable(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one column")
}

func TestDuplicateCount(t *testing.T) {
	res, err := DuplicateCount{Columns: []string{"x"}}.Eval(context.Background(), xyTable(t))
	require.NoError(t, err)
	require.Equal(t, 3, res[KeyTotal])
	require.Equal(t, 2, res[KeyCount])
	require.Equal(t, 2.0/3.0, res[KeyDelta])
}

func TestDuplicateCount_TupleKey(t *testing.T) {
	// (x, y) pairs: only the exact pair duplicates, not x alone.
	tbl := table.FromRecords([]string{"x", "y"}, []map[string]any{
		{"x": 1.0, "y": "a"},
		{"x": 1.0, "y": "b"},
		{"x": 1.0, "y": "a"},
		{"x": 2.0, "y": "a"},
	})
	res, err := DuplicateCount{Columns: []string{"x", "y"}}.Eval(context.Background(), tbl)
	require.NoError(t, err)
	require.Equal(t, 2, res[KeyCount])
}

func TestDuplicateCount_TypedKeysDoNotCollide(t *testing.T) {
	tbl := table.FromRecords([]string{"v"}, []map[string]any{
		{"v": int64(5)}, {"v": 5.0}, {"v": "5"}, {"v": nil}, {"v": nil},
	})
	res, err := DuplicateCount{Columns: []string{"v"}}.Eval(context.Background(), tbl)
	require.NoError(t, err)
	// 5 and 5.0 share a numeric key, "5" does not; the two nulls group.
	require.Equal(t, 4, res[KeyCount])
}

func TestBelowValue_StrictAndInclusive(t *testing.T) {
	tbl := table.FromRecords([]string{"p"}, []map[string]any{
		{"p": 1.0}, {"p": 2.0}, {"p": 2.0}, {"p": 3.0}, {"p": nil},
	})
	ctx := context.Background()

	res, err := BelowValue{Column: "p", Value: 2, Strict: true}.Eval(ctx, tbl)
	require.NoError(t, err)
	require.Equal(t, 5, res[KeyTotal])
	require.Equal(t, 1, res[KeyCount])

	res, err = BelowValue{Column: "p", Value: 2}.Eval(ctx, tbl)
	require.NoError(t, err)
	require.Equal(t, 3, res[KeyCount])
}

func TestBelowValue_NonNumericCell(t *testing.T) {
	tbl := table.FromRecords([]string{"p"}, []map[string]any{{"p": "abc"}})
	_, err := BelowValue{Column: "p", Value: 2}.Eval(context.Background(), tbl)
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-numeric value abc")
}

func TestBelowColumn_ExcludesNullRowsFromTotal(t *testing.T) {
	tbl := table.FromRecords([]string{"x", "y"}, []map[string]any{
		{"x": 1.0, "y": 2.0},
		{"x": 2.0, "y": 2.0},
		{"x": nil, "y": 9.0},
		{"x": 3.0, "y": nil},
	})
	ctx := context.Background()

	res, err := BelowColumn{X: "x", Y: "y", Strict: true}.Eval(ctx, tbl)
	require.NoError(t, err)
	require.Equal(t, 2, res[KeyTotal])
	require.Equal(t, 1, res[KeyCount])
	require.Equal(t, 0.5, res[KeyDelta])

	res, err = BelowColumn{X: "x", Y: "y"}.Eval(ctx, tbl)
	require.NoError(t, err)
	require.Equal(t, 2, res[KeyCount])
}

func TestBelowColumn_AllRowsNull(t *testing.T) {
	tbl := table.FromRecords([]string{"x", "y"}, []map[string]any{
		{"x": nil, "y": 1.0},
	})
	_, err := BelowColumn{X: "x", Y: "y"}.Eval(context.Background(), tbl)
	require.Error(t, err)
	require.Contains(t, err.Error(), "division by zero")
}

func TestRatioBelow(t *testing.T) {
	tbl := table.FromRecords([]string{"x", "y", "z"}, []map[string]any{
		{"x": 1.0, "y": 4.0, "z": 0.5},  // 0.25 < 0.5
		{"x": 3.0, "y": 4.0, "z": 0.5},  // 0.75 not below
		{"x": 2.0, "y": 4.0, "z": 0.5},  // 0.5, strict excludes
		{"x": nil, "y": 4.0, "z": 0.5},  // excluded entirely
		{"x": 1.0, "y": 0.0, "z": 99.0}, // +Inf, counted in total only
		{"x": 0.0, "y": 0.0, "z": 99.0}, // NaN ratio, counted in total only
	})
	ctx := context.Background()

	res, err := RatioBelow{X: "x", Y: "y", Z: "z", Strict: true}.Eval(ctx, tbl)
	require.NoError(t, err)
	require.Equal(t, 5, res[KeyTotal])
	require.Equal(t, 1, res[KeyCount])

	res, err = RatioBelow{X: "x", Y: "y", Z: "z"}.Eval(ctx, tbl)
	require.NoError(t, err)
	require.Equal(t, 2, res[KeyCount])
}

func TestConfidenceBounds(t *testing.T) {
	tbl := table.FromRecords([]string{"v"}, []map[string]any{
		{"v": 6.0}, {"v": 7.5}, {"v": 8.0}, {"v": 9.0},
		{"v": 10.0}, {"v": 10.5}, {"v": 11.0}, {"v": 12.0},
		{"v": nil},
	})
	res, err := ConfidenceBounds{Column: "v", Level: 0.8}.Eval(context.Background(), tbl)
	require.NoError(t, err)
	require.InDelta(t, 7.05, res[KeyLCB].(float64), 1e-9)
	require.InDelta(t, 11.3, res[KeyUCB].(float64), 1e-9)
}

func TestConfidenceBounds_NoNumericValues(t *testing.T) {
	tbl := table.FromRecords([]string{"v"}, []map[string]any{{"v": nil}, {"v": nil}})
	_, err := ConfidenceBounds{Column: "v", Level: 0.95}.Eval(context.Background(), tbl)
	require.Error(t, err)
	require.Contains(t, err.Error(), `no numeric values in column "v"`)
}

func TestConfidenceBounds_NonNumericCell(t *testing.T) {
	tbl := table.FromRecords([]string{"v"}, []map[string]any{{"v": "oops"}})
	_, err := ConfidenceBounds{Column: "v", Level: 0.95}.Eval(context.Background(), tbl)
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-numeric value")
}

func TestDateLag(t *testing.T) {
	withFixedNow(t, time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC))
	tbl := table.FromRecords([]string{"day"}, []map[string]any{
		{"day": "2026-08-10"},
		{"day": "2026-08-21"},
		{"day": "garbage"},
		{"day": nil},
		{"day": "2026-07-30"},
	})
	res, err := DateLag{Column: "day"}.Eval(context.Background(), tbl)
	require.NoError(t, err)
	require.Equal(t, "2026-08-23", res[KeyToday])
	require.Equal(t, "2026-08-21", res[KeyLastDay])
	require.Equal(t, 2, res[KeyLag])
}

func TestDateLag_CustomLayout(t *testing.T) {
	withFixedNow(t, time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC))
	tbl := table.FromRecords([]string{"day"}, []map[string]any{
		{"day": "22.08.2026"},
		{"day": "2026-08-23"}, // wrong layout, skipped
	})
	res, err := DateLag{Column: "day", Layout: "02.01.2006"}.Eval(context.Background(), tbl)
	require.NoError(t, err)
	require.Equal(t, "22.08.2026", res[KeyLastDay])
	require.Equal(t, 1, res[KeyLag])
}

func TestDateLag_TimeCells(t *testing.T) {
	withFixedNow(t, time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC))
	tbl := table.FromRecords([]string{"day"}, []map[string]any{
		{"day": time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC)},
	})
	res, err := DateLag{Column: "day"}.Eval(context.Background(), tbl)
	require.NoError(t, err)
	require.Equal(t, "2026-08-19", res[KeyLastDay])
	require.Equal(t, 4, res[KeyLag])
}

func TestDateLag_NothingParses(t *testing.T) {
	withFixedNow(t, time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC))
	tbl := table.FromRecords([]string{"day"}, []map[string]any{
		{"day": "junk"}, {"day": nil}, {"day": 12.0},
	})
	res, err := DateLag{Column: "day"}.Eval(context.Background(), tbl)
	require.NoError(t, err)
	require.Equal(t, "2026-08-23", res[KeyToday])
	require.Nil(t, res[KeyLastDay])
	require.Nil(t, res[KeyLag])
}

func TestEval_UnsupportedTable(t *testing.T) {
	_, err := ZeroCount{Column: "x"}.Eval(context.Background(), nil)
	var unsupported *UnsupportedTableError
	require.ErrorAs(t, err, &unsupported)
}

func TestEval_Stateless(t *testing.T) {
	tbl := xyTable(t)
	m := ZeroCount{Column: "x"}
	first, err := m.Eval(context.Background(), tbl)
	require.NoError(t, err)
	second, err := m.Eval(context.Background(), tbl)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDescriptions(t *testing.T) {
	cases := map[string]Metric{
		"row_count()":                                   RowCount{},
		"zero_count(column=qty)":                        ZeroCount{Column: "qty"},
		"null_count(columns=[a, b], mode=any)":          NullCount{Columns: []string{"a", "b"}, Mode: ModeAny},
		"duplicate_count(columns=[sku])":                DuplicateCount{Columns: []string{"sku"}},
		"value_count(column=sku, value=ABC)":            ValueCount{Column: "sku", Value: "ABC"},
		"below_value(column=p, value=100, strict=true)": BelowValue{Column: "p", Value: 100, Strict: true},
		"below_column(x=cost, y=price, strict=false)":   BelowColumn{X: "cost", Y: "price"},
		"ratio_below(x=a, y=b, z=c, strict=true)":       RatioBelow{X: "a", Y: "b", Z: "c", Strict: true},
		"confidence_bounds(column=amt, level=0.95)":     ConfidenceBounds{Column: "amt", Level: 0.95},
		"date_lag(column=day, layout=2006-01-02)":       DateLag{Column: "day"},
	}
	for want, m := range cases {
		require.Equal(t, want, m.String())
	}
}

func TestEvalErrorsAreNotUnsupported(t *testing.T) {
	// Ordinary evaluation failures must stay distinguishable from the
	// propagating unsupported-representation error.
	_, err := ZeroCount{Column: "nope"}.Eval(context.Background(), xyTable(t))
	require.Error(t, err)
	var unsupported *UnsupportedTableError
	require.False(t, errors.As(err, &unsupported))
}
