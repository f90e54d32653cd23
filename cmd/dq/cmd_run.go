package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/valfrank/SimulatorML/internal/config"
	"github.com/valfrank/SimulatorML/internal/reporting"
	"github.com/valfrank/SimulatorML/internal/source"
	"github.com/valfrank/SimulatorML/internal/spinner"
	"github.com/valfrank/SimulatorML/pkg/report"
)

var (
	envFile    string
	outputPath string
	junitPath  string
	format     string
	workers    int
	interpret  bool

	// startSpinner is a test hook for replacing the spinner in tests
	startSpinner = spinner.Start
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Run a data quality checklist",
		Long: `Run a data quality checklist from a config file.

The config file declares the tables to load and the checks to evaluate
against them. Relative csv/dir paths resolve against the config file's
directory. Checks whose values fall outside their limits fail the run.`,
		Args: cobra.ExactArgs(1),
		RunE: runCommandE,
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Env file with credentials (default: .env if present)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output JSON file for the fitted snapshot")
	cmd.Flags().StringVar(&junitPath, "junit", "", "Output JUnit XML file for CI")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, markdown")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of concurrent workers (overrides config)")
	cmd.Flags().BoolVar(&interpret, "interpret", false, "Print a plain-language interpretation of the results")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	configPath := args[0]

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	// Full validation up front so every violation is reported at once
	violations, err := config.ValidateFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if len(violations) > 0 {
		return fmt.Errorf("invalid config %s:\n  - %s", configPath, strings.Join(violations, "\n  - "))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	resolveTablePaths(filepath.Dir(configPath), cfg)

	checklist, err := cfg.Checklist()
	if err != nil {
		return fmt.Errorf("building checklist: %w", err)
	}

	// CLI flag overrides config
	w := cfg.Options.Workers
	if workers > 0 {
		w = workers
	}

	fmt.Printf("Running checklist: %s\n", configPath)
	fmt.Printf("Tables: %d\n", len(cfg.Tables))
	fmt.Printf("Checks: %d\n", len(checklist))
	if w > 1 {
		fmt.Printf("Parallel: %d workers\n", w)
	}
	fmt.Println()

	ctx := context.Background()

	stopSpinner := startSpinner(cmd.ErrOrStderr(), "Loading tables...")
	tables, err := source.Load(ctx, cfg.Tables)
	stopSpinner()
	if err != nil {
		return fmt.Errorf("failed to load tables: %w", err)
	}

	r := report.New(checklist, report.WithWorkers(w))
	if err := r.Fit(ctx, tables); err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	snap, err := r.Snapshot()
	if err != nil {
		return err
	}

	switch format {
	case "text":
		text, err := r.Render()
		if err != nil {
			return err
		}
		fmt.Println(text)

		if interpret {
			fmt.Println()
			fmt.Print(reporting.FormatSummaryReport(snap))
		}
	case "markdown":
		fmt.Print(reporting.RenderMarkdown(snap))
	default:
		return fmt.Errorf("unknown output format: %s (supported: text, markdown)", format)
	}

	if outputPath != "" {
		if err := saveSnapshot(snap, outputPath); err != nil {
			return fmt.Errorf("failed to save output: %w", err)
		}
		fmt.Printf("\nResults saved to: %s\n", outputPath)
	}

	if junitPath != "" {
		if err := reporting.WriteJUnitXML(snap, junitPath); err != nil {
			return fmt.Errorf("failed to save JUnit XML: %w", err)
		}
		fmt.Printf("JUnit XML saved to: %s\n", junitPath)
	}

	// Return check failure as error so main can map it to an exit code
	if snap.Summary.Failed > 0 || snap.Summary.Errors > 0 {
		return &CheckFailureError{
			Message: fmt.Sprintf("report completed with %d failed and %d error(s)", snap.Summary.Failed, snap.Summary.Errors),
		}
	}

	return nil
}

// resolveTablePaths joins relative csv/dir paths with the config file's
// directory, so a config can be run from anywhere.
func resolveTablePaths(cfgDir string, cfg *config.Config) {
	for name, src := range cfg.Tables {
		switch src.Kind {
		case config.SourceCSV, config.SourceDir:
			if src.Path != "" && !filepath.IsAbs(src.Path) {
				src.Path = filepath.Join(cfgDir, src.Path)
				cfg.Tables[name] = src
			}
		}
	}
}

func saveSnapshot(snap report.Snapshot, path string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
