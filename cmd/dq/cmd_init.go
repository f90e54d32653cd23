package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/valfrank/SimulatorML/internal/config"
	"github.com/valfrank/SimulatorML/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a starter checklist",
		Long: `Initialize a directory with a starter dq.yaml and example data.

Creates a dq.yaml checklist over a data/ directory with an example CSV
file, ready for "dq run dq.yaml".

Use --interactive to run a guided wizard that collects the first table
and check instead of writing the defaults.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run guided config wizard")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, interactive bool) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	cfg := defaultConfig()
	if interactive {
		wizardCfg, err := wizard.RunConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		cfg = wizardCfg
	}

	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	cfgData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	cfgPath := filepath.Join(dir, "dq.yaml")
	if err := os.WriteFile(cfgPath, cfgData, 0o644); err != nil {
		return fmt.Errorf("failed to write dq.yaml: %w", err)
	}

	// Example data the default config points at
	csvContent := `sku,qty,price
A-100,3,9.50
B-200,0,12.00
C-300,5,
`
	csvPath := filepath.Join(dataDir, "example.csv")
	if err := os.WriteFile(csvPath, []byte(csvContent), 0o644); err != nil {
		return fmt.Errorf("failed to write example CSV: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Initialized checklist:") //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", cfgPath)         //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", csvPath)         //nolint:errcheck

	return nil
}

// defaultConfig is the non-interactive scaffold. Its checks pass against
// the example CSV, so "dq init && dq run dq.yaml" succeeds out of the box.
func defaultConfig() *config.Config {
	return &config.Config{
		Options: config.Options{Workers: 2},
		Tables: map[string]config.Source{
			"example": {Kind: config.SourceCSV, Path: "data/example.csv"},
		},
		Checks: []config.CheckSpec{
			{
				Table:  "example",
				Metric: "row_count",
				Limits: map[string][]float64{"total": {1, 1000000}},
			},
			{
				Table:  "example",
				Metric: "zero_count",
				Params: map[string]any{"column": "qty"},
				Limits: map[string][]float64{"delta": {0, 0.5}},
			},
			{
				Table:  "example",
				Metric: "null_count",
				Params: map[string]any{"columns": []string{"price"}},
				Limits: map[string][]float64{"delta": {0, 0.5}},
			},
		},
	}
}
