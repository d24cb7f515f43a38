package stream

import (
	"context"
	"fmt"
)

// FrameWriter receives encoded SSE frames in order.
type FrameWriter interface {
	WriteFrame(frame []byte) error
}

// FrameWriterFunc adapts a function to FrameWriter.
type FrameWriterFunc func(frame []byte) error

// WriteFrame implements FrameWriter.
func (f FrameWriterFunc) WriteFrame(frame []byte) error { return f(frame) }

// PipeStats summarizes a piped stream.
type PipeStats struct {
	// Chunks is the number of chunks received from the source.
	Chunks int

	// Frames is the number of frames written, including the terminal frame.
	Frames int

	// Completed is true when the source closed and the terminal frames were
	// written.
	Completed bool

	// FinishReason is set when Completed is true.
	FinishReason string
}

// Pipe feeds every chunk from src through t and writes each resulting frame
// to w, one chunk at a time and in arrival order. When src closes it writes
// the terminal frames from Flush.
//
// If ctx is cancelled or a write fails, Pipe returns immediately without
// flushing: a partial stream has no finish frame.
func Pipe(ctx context.Context, src <-chan Chunk, t *Transformer, w FrameWriter) (PipeStats, error) {
	var stats PipeStats

	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()

		case c, ok := <-src:
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			if !ok {
				if err := w.WriteFrame(t.Flush()); err != nil {
					return stats, fmt.Errorf("write terminal frame: %w", err)
				}
				stats.Frames++
				stats.Completed = true
				stats.FinishReason = t.FinishReason()
				return stats, nil
			}

			stats.Chunks++
			out := t.Transform(c)
			if out == nil {
				continue
			}
			if err := w.WriteFrame(out); err != nil {
				return stats, fmt.Errorf("write frame: %w", err)
			}
			stats.Frames++
		}
	}
}
