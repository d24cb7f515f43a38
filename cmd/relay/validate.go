package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/relay/pkg/cli"
	"mercator-hq/relay/pkg/config"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration file with environment overrides applied and report
every problem found.

Examples:
  # Validate a config file
  relay validate --config config.yaml

  # Machine-readable report
  relay validate --config config.yaml --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json, yaml")
}

type fieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationReport struct {
	Config string         `json:"config"`
	Valid  bool           `json:"valid"`
	Errors []fieldProblem `json:"errors,omitempty"`
}

func (r validationReport) String() string {
	if r.Valid {
		return "Configuration valid: " + r.Config
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Configuration invalid: %s\n", r.Config)
	for _, e := range r.Errors {
		fmt.Fprintf(&sb, "  - %s: %s\n", e.Field, e.Message)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatterFor(validateFlags.format)
	if err != nil {
		return err
	}

	report := validationReport{Config: cfgFile, Valid: true}
	if report.Config == "" {
		report.Config = "(defaults)"
	}

	_, loadErr := config.LoadConfigWithEnvOverrides(cfgFile)
	if loadErr != nil {
		report.Valid = false
		var ve config.ValidationError
		if errors.As(loadErr, &ve) {
			for _, fe := range ve.Errors {
				report.Errors = append(report.Errors, fieldProblem{Field: fe.Field, Message: fe.Message})
			}
		} else {
			report.Errors = []fieldProblem{{Field: "", Message: loadErr.Error()}}
		}
	}

	if err := formatter.FormatTo(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if !report.Valid {
		return cli.NewConfigError("", fmt.Sprintf("%d problem(s) found", len(report.Errors)))
	}
	return nil
}
