package metrics

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Kind identifies a metric variant in configuration files.
type Kind string

const (
	KindRowCount         Kind = "row_count"
	KindZeroCount        Kind = "zero_count"
	KindNullCount        Kind = "null_count"
	KindDuplicateCount   Kind = "duplicate_count"
	KindValueCount       Kind = "value_count"
	KindBelowValue       Kind = "below_value"
	KindBelowColumn      Kind = "below_column"
	KindRatioBelow       Kind = "ratio_below"
	KindConfidenceBounds Kind = "confidence_bounds"
	KindDateLag          Kind = "date_lag"
)

// Kinds returns every metric kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindRowCount,
		KindZeroCount,
		KindNullCount,
		KindDuplicateCount,
		KindValueCount,
		KindBelowValue,
		KindBelowColumn,
		KindRatioBelow,
		KindConfidenceBounds,
		KindDateLag,
	}
}

// DefaultConfidenceLevel applies when a confidence_bounds check omits its
// level parameter.
const DefaultConfidenceLevel = 0.95

// Create builds a metric from its kind and raw kind-specific parameters,
// as they appear in configuration files.
func Create(kind Kind, params map[string]any) (Metric, error) {
	switch kind {
	case KindRowCount:
		return RowCount{}, nil

	case KindZeroCount:
		var v struct {
			Column string
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		if v.Column == "" {
			return nil, fmt.Errorf("%s requires parameter %q", kind, "column")
		}
		return ZeroCount{Column: v.Column}, nil

	case KindNullCount:
		var v struct {
			Columns []string
			Mode    string
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		if len(v.Columns) == 0 {
			return nil, fmt.Errorf("%s requires parameter %q", kind, "columns")
		}
		if v.Mode == "" {
			v.Mode = ModeAny
		}
		if v.Mode != ModeAny && v.Mode != ModeAll {
			return nil, fmt.Errorf("%s: unknown mode %q, want %q or %q", kind, v.Mode, ModeAny, ModeAll)
		}
		return NullCount{Columns: v.Columns, Mode: v.Mode}, nil

	case KindDuplicateCount:
		var v struct {
			Columns []string
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		if len(v.Columns) == 0 {
			return nil, fmt.Errorf("%s requires parameter %q", kind, "columns")
		}
		return DuplicateCount{Columns: v.Columns}, nil

	case KindValueCount:
		var v struct {
			Column string
			Value  any
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		if v.Column == "" {
			return nil, fmt.Errorf("%s requires parameter %q", kind, "column")
		}
		if _, ok := params["value"]; !ok {
			return nil, fmt.Errorf("%s requires parameter %q", kind, "value")
		}
		return ValueCount{Column: v.Column, Value: v.Value}, nil

	case KindBelowValue:
		var v struct {
			Column string
			Value  float64
			Strict bool
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		if v.Column == "" {
			return nil, fmt.Errorf("%s requires parameter %q", kind, "column")
		}
		if _, ok := params["value"]; !ok {
			return nil, fmt.Errorf("%s requires parameter %q", kind, "value")
		}
		return BelowValue{Column: v.Column, Value: v.Value, Strict: v.Strict}, nil

	case KindBelowColumn:
		var v struct {
			X      string
			Y      string
			Strict bool
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		if v.X == "" || v.Y == "" {
			return nil, fmt.Errorf("%s requires parameters %q and %q", kind, "x", "y")
		}
		return BelowColumn{X: v.X, Y: v.Y, Strict: v.Strict}, nil

	case KindRatioBelow:
		var v struct {
			X      string
			Y      string
			Z      string
			Strict bool
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		if v.X == "" || v.Y == "" || v.Z == "" {
			return nil, fmt.Errorf("%s requires parameters %q, %q and %q", kind, "x", "y", "z")
		}
		return RatioBelow{X: v.X, Y: v.Y, Z: v.Z, Strict: v.Strict}, nil

	case KindConfidenceBounds:
		var v struct {
			Column string
			Level  float64
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		if v.Column == "" {
			return nil, fmt.Errorf("%s requires parameter %q", kind, "column")
		}
		if v.Level == 0 {
			v.Level = DefaultConfidenceLevel
		}
		if v.Level <= 0 || v.Level >= 1 {
			return nil, fmt.Errorf("%s: level must be in (0, 1), got %g", kind, v.Level)
		}
		return ConfidenceBounds{Column: v.Column, Level: v.Level}, nil

	case KindDateLag:
		var v struct {
			Column string
			Layout string
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		if v.Column == "" {
			return nil, fmt.Errorf("%s requires parameter %q", kind, "column")
		}
		return DateLag{Column: v.Column, Layout: v.Layout}, nil

	default:
		return nil, fmt.Errorf("'%s' is not a valid metric kind", kind)
	}
}
