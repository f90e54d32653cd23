package main

import (
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/valfrank/SimulatorML/internal/config"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Validate a config file without running it",
		Long: `Validate a config file against the schema and semantic rules.

Reports all violations at once: schema shape, unknown tables or metric
kinds, and malformed limits. Exits non-zero when the config is invalid.`,
		Args:          cobra.ExactArgs(1),
		RunE:          runValidate,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.Flags().String("format", "text", "Output format: text | json")
	return cmd
}

type validateJSONReport struct {
	Path       string   `json:"path"`
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]

	// Same environment run would see when expanding ${VAR} references.
	_ = godotenv.Load()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q: expected text or json", format)
	}

	violations, err := config.ValidateFile(configPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		data, err := json.MarshalIndent(validateJSONReport{
			Path:       configPath,
			Valid:      len(violations) == 0,
			Violations: violations,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data)) //nolint:errcheck
	default:
		if len(violations) == 0 {
			fmt.Fprintf(out, "%s: OK\n", configPath) //nolint:errcheck
		} else {
			fmt.Fprintf(out, "%s: %d violation(s)\n", configPath, len(violations)) //nolint:errcheck
			for _, v := range violations {
				fmt.Fprintf(out, "  - %s\n", v) //nolint:errcheck
			}
		}
	}

	if len(violations) > 0 {
		return fmt.Errorf("config validation failed with %d violation(s)", len(violations))
	}

	return nil
}
