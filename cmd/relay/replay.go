package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/relay/internal/backend"
	"mercator-hq/relay/pkg/cli"
	"mercator-hq/relay/pkg/stream"
)

var replayFlags struct {
	fixtures string
	model    string
	mode     string
	stream   bool
	delay    time.Duration
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Render a recorded chunk fixture as a client would see it",
	Long: `Replay a recorded backend chunk fixture through the output mode filter
and print the result: SSE frames with --stream, otherwise a single
chat.completion body.

Fixtures are read from <fixtures>/<model>.jsonl, the same layout the
replay backend serves.

Examples:
  # Print the SSE frames a tagged-mode client would receive
  relay replay --model gemini-2.5-pro --mode tagged --stream

  # Print the non-streaming response in r1 mode
  relay replay --model gemini-2.5-flash --mode r1`,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayFlags.fixtures, "fixtures", "", "fixture directory (backend.fixtures_dir when empty)")
	replayCmd.Flags().StringVarP(&replayFlags.model, "model", "m", "", "model whose fixture to replay (required)")
	replayCmd.Flags().StringVar(&replayFlags.mode, "mode", "", "output mode: openai, tagged, hidden, r1 (reasoning.output_mode when empty)")
	replayCmd.Flags().BoolVar(&replayFlags.stream, "stream", false, "print SSE frames instead of a single response")
	replayCmd.Flags().DurationVar(&replayFlags.delay, "delay", 0, "pause between chunks")
	_ = replayCmd.MarkFlagRequired("model")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	mode := cfg.OutputMode()
	if replayFlags.mode != "" {
		if mode, err = stream.ParseOutputMode(replayFlags.mode); err != nil {
			return cli.NewCommandError("replay", err)
		}
	}

	dir := replayFlags.fixtures
	if dir == "" {
		dir = cfg.Backend.FixturesDir
	}
	src := backend.NewReplay(dir, cfg.Backend.DefaultFixture,
		backend.WithLogger(logger),
		backend.WithDelay(replayFlags.delay),
	)

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	chunks, err := src.Stream(ctx, replayFlags.model, nil)
	if err != nil {
		return cli.NewCommandError("replay", err)
	}
	filtered := stream.Filtered(ctx, chunks, mode)

	if replayFlags.stream {
		return writeFrames(ctx, cmd, filtered, mode)
	}

	comp, err := stream.Collect(ctx, filtered, replayFlags.model, mode)
	if err != nil {
		return cli.NewCommandError("replay", err)
	}
	return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), comp.Response())
}

func writeFrames(ctx context.Context, cmd *cobra.Command, src <-chan stream.Chunk, mode stream.OutputMode) error {
	out := cmd.OutOrStdout()
	t := stream.NewTransformer(replayFlags.model, mode)

	stats, err := stream.Pipe(ctx, src, t, stream.FrameWriterFunc(func(frame []byte) error {
		_, err := out.Write(frame)
		return err
	}))
	if err != nil {
		return cli.NewCommandError("replay", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "chunks=%d frames=%d finish_reason=%s tool_calls=%d\n",
		stats.Chunks, stats.Frames, stats.FinishReason, t.ToolCalls())
	return nil
}
