package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/valfrank/SimulatorML/pkg/table"
)

// DefaultDateLayout is the layout assumed when DateLag.Layout is empty.
const DefaultDateLayout = "2006-01-02"

// timeNow is swapped in tests to pin the reference date.
var timeNow = time.Now

// DateLag reports the freshness of a date column: the maximum parseable
// date as last_day, the whole days between it and now as lag, and the
// current date as today. Cells that are null or fail to parse are
// skipped; when nothing parses, last_day and lag are nil rather than an
// error, so a limit on lag fails the check instead of erroring it.
type DateLag struct {
	Column string
	Layout string
}

func (m DateLag) String() string {
	return fmt.Sprintf("date_lag(column=%s, layout=%s)", m.Column, m.layout())
}

func (m DateLag) layout() string {
	if m.Layout == "" {
		return DefaultDateLayout
	}
	return m.Layout
}

func (m DateLag) Eval(ctx context.Context, t table.Table) (Result, error) {
	return eval(ctx, t, m.evalLocal, m.evalPartitioned)
}

func (m DateLag) evalLocal(tt *table.Local) (Result, error) {
	col, err := columnOf(tt, m.Column)
	if err != nil {
		return nil, err
	}
	last, found := m.maxDate(time.Time{}, false, col)
	return m.result(last, found), nil
}

func (m DateLag) evalPartitioned(ctx context.Context, tt *table.Partitioned) (Result, error) {
	var last time.Time
	found := false
	err := tt.Scan(ctx, func(chunk *table.Local) error {
		col, err := columnOf(chunk, m.Column)
		if err != nil {
			return err
		}
		last, found = m.maxDate(last, found, col)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.result(last, found), nil
}

func (m DateLag) maxDate(last time.Time, found bool, col []any) (time.Time, bool) {
	for _, v := range col {
		var d time.Time
		switch x := v.(type) {
		case string:
			parsed, err := time.Parse(m.layout(), x)
			if err != nil {
				continue
			}
			d = parsed
		case time.Time:
			d = x
		default:
			continue
		}
		if !found || d.After(last) {
			last = d
			found = true
		}
	}
	return last, found
}

func (m DateLag) result(last time.Time, found bool) Result {
	now := timeNow()
	res := Result{KeyToday: now.Format(m.layout())}
	if !found {
		res[KeyLastDay] = nil
		res[KeyLag] = nil
		return res
	}
	res[KeyLastDay] = last.Format(m.layout())
	res[KeyLag] = int(now.Sub(last).Hours() / 24)
	return res
}
