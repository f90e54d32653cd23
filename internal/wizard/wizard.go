// Package wizard collects a starter checklist config through an
// interactive form.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/valfrank/SimulatorML/internal/config"
	"github.com/valfrank/SimulatorML/pkg/metrics"
)

// RunConfigWizard runs an interactive huh form that collects the first
// table and check of a checklist config.
func RunConfigWizard(in io.Reader, out io.Writer) (*config.Config, error) {
	var (
		tableName  = "example"
		sourceKind = config.SourceCSV
		location   = "data/example.csv"
		metricKind = string(metrics.KindRowCount)
		column     string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Table name").
				Description("The name checks refer to").
				Placeholder("example").
				Value(&tableName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("table name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Source kind").
				Options(
					huh.NewOption("csv file", config.SourceCSV),
					huh.NewOption("sql query", config.SourceSQL),
					huh.NewOption("partition directory", config.SourceDir),
					huh.NewOption("object store prefix", config.SourceObject),
				).
				Value(&sourceKind),
			huh.NewInput().
				Title("Location").
				Description("File path, directory, table name, or object prefix").
				Placeholder("data/example.csv").
				Value(&location),
			huh.NewSelect[string]().
				Title("First check").
				Options(
					huh.NewOption("row_count", string(metrics.KindRowCount)),
					huh.NewOption("zero_count", string(metrics.KindZeroCount)),
					huh.NewOption("null_count", string(metrics.KindNullCount)),
					huh.NewOption("duplicate_count", string(metrics.KindDuplicateCount)),
				).
				Value(&metricKind),
			huh.NewInput().
				Title("Column").
				Description("Column the check inspects (unused for row_count)").
				Value(&column).
				Validate(func(s string) error {
					if metrics.Kind(metricKind) != metrics.KindRowCount && strings.TrimSpace(s) == "" {
						return fmt.Errorf("column is required for %s", metricKind)
					}
					return nil
				}),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return buildConfig(
		strings.TrimSpace(tableName),
		sourceKind,
		strings.TrimSpace(location),
		metrics.Kind(metricKind),
		strings.TrimSpace(column),
	), nil
}

// buildConfig assembles a runnable config from the collected answers.
// SQL and object sources get ${VAR} placeholders for credentials so the
// generated file never embeds secrets.
func buildConfig(table, kind, location string, metricKind metrics.Kind, column string) *config.Config {
	src := config.Source{Kind: kind}
	switch kind {
	case config.SourceSQL:
		src.Driver = "postgres"
		src.DSN = "${DQ_DSN}"
		src.Query = fmt.Sprintf("SELECT * FROM %s", location)
	case config.SourceObject:
		src.Endpoint = "${DQ_S3_ENDPOINT}"
		src.Bucket = "${DQ_S3_BUCKET}"
		src.Prefix = location
		src.AccessKey = "${DQ_S3_ACCESS_KEY}"
		src.SecretKey = "${DQ_S3_SECRET_KEY}"
	default:
		src.Path = location
	}

	check := config.CheckSpec{
		Table:  table,
		Metric: string(metricKind),
		Limits: starterLimits(metricKind),
	}
	switch metricKind {
	case metrics.KindZeroCount:
		check.Params = map[string]any{"column": column}
	case metrics.KindNullCount, metrics.KindDuplicateCount:
		check.Params = map[string]any{"columns": []string{column}}
	}

	return &config.Config{
		Options: config.Options{Workers: 2},
		Tables:  map[string]config.Source{table: src},
		Checks:  []config.CheckSpec{check},
	}
}

// starterLimits picks a permissive default range per kind; users tighten
// them once they know their data.
func starterLimits(kind metrics.Kind) map[string][]float64 {
	if kind == metrics.KindRowCount {
		return map[string][]float64{"total": {1, 1000000}}
	}
	return map[string][]float64{"delta": {0, 0.5}}
}
