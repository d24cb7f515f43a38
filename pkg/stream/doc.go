// Package stream converts the backend's decoded event stream into
// OpenAI-compatible chat.completion.chunk server-sent events.
//
// A Chunk is a closed set of event kinds (text, reasoning, tool calls, native
// tool activity, grounding, usage). Each stream gets its own Transformer,
// which emits at most one frame per chunk and a terminal frame plus the
// [DONE] sentinel on Flush:
//
//	t := stream.NewTransformer("gemini-2.5-flash", stream.ModeR1)
//	for c := range chunks {
//	    if frame := t.Transform(c); frame != nil {
//	        w.Write(frame)
//	    }
//	}
//	w.Write(t.Flush())
//
// Pipe runs that loop with cancellation: when the client goes away no finish
// frame is synthesized. Filtered applies the mode-specific shaping (dropping
// or tagging reasoning) that must happen before the Transformer, and Collect
// folds a stream into a single non-streaming response.
package stream
