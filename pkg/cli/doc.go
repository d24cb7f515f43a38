/*
Package cli provides helpers shared by the relay command's subcommands.

Output Formatting:

Commands that print structured results accept --format text|json|yaml:

	formatter, err := cli.NewFormatterFor("yaml")
	if err != nil {
		return err
	}
	return formatter.FormatTo(cmd.OutOrStdout(), result)

Errors:

ConfigError and CommandError carry enough context for a one-line message;
ExitCode maps them to the process exit status.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
