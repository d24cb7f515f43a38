package stream

import "context"

const (
	thinkOpenTag  = "<thinking>\n"
	thinkCloseTag = "\n</thinking>\n\n"
)

// Filter shapes the chunk sequence for an output mode before it reaches the
// Transformer.
//
//   - hidden drops RealThinking, Reasoning and ReasoningEnd chunks.
//   - tagged rewrites reasoning into ThinkingContent wrapped in <thinking>
//     tags, closing the tag before the first answer chunk or at stream end.
//   - openai and r1 pass every chunk through.
type Filter struct {
	mode  OutputMode
	inTag bool
}

// ModeFilter returns a Filter for mode.
func ModeFilter(mode OutputMode) *Filter {
	return &Filter{mode: mode}
}

// Apply returns the chunks to forward for c, in order.
func (f *Filter) Apply(c Chunk) []Chunk {
	switch f.mode {
	case ModeHidden:
		switch c.(type) {
		case RealThinking, Reasoning, ReasoningEnd:
			return nil
		}
		return []Chunk{c}

	case ModeTagged:
		return f.applyTagged(c)

	default:
		return []Chunk{c}
	}
}

// Close returns chunks owed at end of stream, if any.
func (f *Filter) Close() []Chunk {
	if f.inTag {
		f.inTag = false
		return []Chunk{ThinkingContent{Text: thinkCloseTag}}
	}
	return nil
}

func (f *Filter) applyTagged(c Chunk) []Chunk {
	switch c := c.(type) {
	case RealThinking:
		return []Chunk{f.thinking(c.Text)}
	case Reasoning:
		return []Chunk{f.thinking(c.Reasoning)}
	case ReasoningEnd:
		return f.Close()
	case Text, ThinkingContent, ToolCode:
		if closing := f.Close(); closing != nil {
			return append(closing, c)
		}
		return []Chunk{c}
	default:
		return []Chunk{c}
	}
}

func (f *Filter) thinking(text string) Chunk {
	if !f.inTag {
		f.inTag = true
		return ThinkingContent{Text: thinkOpenTag + text}
	}
	return ThinkingContent{Text: text}
}

// Filtered runs src through a Filter for mode on its own goroutine. The
// returned channel closes after src closes, or when ctx is done.
func Filtered(ctx context.Context, src <-chan Chunk, mode OutputMode) <-chan Chunk {
	if mode != ModeHidden && mode != ModeTagged {
		return src
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		f := ModeFilter(mode)

		send := func(chunks []Chunk) bool {
			for _, c := range chunks {
				select {
				case out <- c:
				case <-ctx.Done():
					return false
				}
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-src:
				if !ok {
					send(f.Close())
					return
				}
				if !send(f.Apply(c)) {
					return
				}
			}
		}
	}()
	return out
}
