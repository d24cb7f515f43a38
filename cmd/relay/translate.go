package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/relay/pkg/cli"
	"mercator-hq/relay/pkg/models"
	"mercator-hq/relay/pkg/proxy"
	"mercator-hq/relay/pkg/translate"
)

var translateFlags struct {
	file   string
	format string
}

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Print the backend request for a chat completion request",
	Long: `Translate an OpenAI chat completion request into the Gemini request the
server would send, using the same configuration as the server.

The request is read from --file, or from stdin when no file is given.

Examples:
  # Translate a request file
  relay translate --file request.json

  # Translate from stdin as YAML
  cat request.json | relay translate --format yaml`,
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&translateFlags.file, "file", "f", "", "request file (stdin when empty)")
	translateCmd.Flags().StringVar(&translateFlags.format, "format", "json", "output format: json, yaml")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	formatter, err := requestFormatter(translateFlags.format)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cmd, translateFlags.file)
	if err != nil {
		return err
	}
	defer closeIn()

	req, err := proxy.DecodeChatCompletionRequest(in, cfg.Server.MaxRequestBytes)
	if err != nil {
		return cli.NewCommandError("translate", err)
	}

	tr := translate.NewBuilder(models.Default(), cfg.SafetyThresholds(), logger).
		BuildRequest(req, cfg.Reasoning.RealThinking, cfg.ToolPolicy())

	logger.Debug("request translated",
		"model", req.Model,
		"tool_family", tr.Tools.Family(),
		"native_tools", tr.Tools.NativeNames(),
		"budget_corrections", len(tr.Generation.Corrections),
	)

	return formatter.FormatTo(cmd.OutOrStdout(), tr.Request)
}

// requestFormatter returns a structured formatter. Text has no useful
// rendering for a request, so it falls back to JSON.
func requestFormatter(s string) (cli.Formatter, error) {
	format, err := cli.ParseFormat(s)
	if err != nil {
		return nil, err
	}
	if format == cli.FormatText {
		format = cli.FormatJSON
	}
	return cli.NewFormatter(format), nil
}

// openInput opens path, or returns the command's stdin when path is empty
// or "-".
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
