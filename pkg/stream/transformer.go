package stream

import (
	"time"

	"github.com/google/uuid"

	"mercator-hq/relay/pkg/proxy/types"
)

// Option configures a Transformer.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the clock used for the "created" timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides the generator used for the chat id and tool call
// ids. The default is a random UUID.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Transformer converts backend chunks for one stream into OpenAI SSE frames.
//
// A Transformer is OPEN until Flush is called and CLOSED afterwards; a closed
// transformer returns nil for every call. It is not safe for concurrent use:
// each stream owns its own instance and feeds it chunks in arrival order.
type Transformer struct {
	model   string
	mode    OutputMode
	id      string
	created int64
	newID   func() string

	roleSent        bool
	pendingCallID   string
	pendingCallName string
	toolCalls       int
	usage           *Usage
	finishReason    string
	closed          bool
}

// NewTransformer creates the per-stream state for model in the given mode.
func NewTransformer(model string, mode OutputMode, opts ...Option) *Transformer {
	o := buildOptions(opts)
	return &Transformer{
		model:   model,
		mode:    mode,
		id:      "chatcmpl-" + o.newID(),
		created: o.now().Unix(),
		newID:   o.newID,
	}
}

// ID returns the chat completion id shared by every frame of the stream.
func (t *Transformer) ID() string { return t.id }

// Mode returns the output mode.
func (t *Transformer) Mode() OutputMode { return t.mode }

// ToolCalls returns how many tool calls were emitted so far.
func (t *Transformer) ToolCalls() int { return t.toolCalls }

// PendingToolCall returns the id and name of the most recent tool call.
func (t *Transformer) PendingToolCall() (id, name string) {
	return t.pendingCallID, t.pendingCallName
}

// FinishReason returns the finish reason sent by Flush, or "" while open.
func (t *Transformer) FinishReason() string { return t.finishReason }

// Usage returns the last usage chunk seen, if any.
func (t *Transformer) Usage() (Usage, bool) {
	if t.usage == nil {
		return Usage{}, false
	}
	return *t.usage, true
}

// Closed reports whether Flush has run.
func (t *Transformer) Closed() bool { return t.closed }

// Transform handles one chunk and returns the SSE frame to send, or nil when
// the chunk produces no client-visible delta.
func (t *Transformer) Transform(c Chunk) []byte {
	if t.closed {
		return nil
	}

	var d delta

	switch c := c.(type) {
	case Text:
		t.setContent(&d, c.Text)
	case ThinkingContent:
		t.setContent(&d, c.Text)
	case RealThinking:
		t.setReasoning(&d, c.Text)
	case Reasoning:
		t.setReasoning(&d, c.Reasoning)
	case ReasoningEnd:
		if t.mode != ModeR1 {
			finished := c.Finished
			d.ReasoningFinished = &finished
		}
	case ToolCode:
		t.setToolCall(&d, c)
	case NativeTool:
		d.NativeToolCalls = []types.NativeToolCall{{Type: c.Type, Data: c.Data}}
	case GroundingMetadata:
		d.Grounding = c.Data
	case Usage:
		u := c
		t.usage = &u
		return nil
	default:
		return nil
	}

	if d.empty() {
		return nil
	}
	return t.encode(d, nil, nil)
}

// Flush ends the stream. It returns the terminal frame, carrying the finish
// reason and usage, followed by the [DONE] sentinel. Subsequent calls return
// nil.
func (t *Transformer) Flush() []byte {
	if t.closed {
		return nil
	}
	t.closed = true

	t.finishReason = finishStop
	if t.pendingCallID != "" {
		t.finishReason = finishToolCalls
	}

	var usage *types.Usage
	if t.usage != nil {
		usage = &types.Usage{
			PromptTokens:     t.usage.InputTokens,
			CompletionTokens: t.usage.OutputTokens,
			TotalTokens:      t.usage.InputTokens + t.usage.OutputTokens,
		}
	}
	if t.mode == ModeR1 {
		if usage == nil {
			usage = &types.Usage{}
		}
		// No tokenizer is available, so the reasoning count is a fixed zero.
		usage.CompletionTokensDetails = &types.CompletionTokensDetails{ReasoningTokens: 0}
	}

	reason := t.finishReason
	out := t.encode(delta{}, &reason, usage)
	return append(out, DoneFrame...)
}

func (t *Transformer) setContent(d *delta, text string) {
	if !t.roleSent {
		d.Role = roleAsst
		t.roleSent = true
	}
	d.Content = jsonString(text)
}

func (t *Transformer) setReasoning(d *delta, text string) {
	if t.mode == ModeR1 {
		d.ReasoningContent = &text
	} else {
		d.Reasoning = &text
	}
}

func (t *Transformer) setToolCall(d *delta, c ToolCode) {
	if !t.roleSent {
		d.Role = roleAsst
		d.Content = jsonNull
		t.roleSent = true
	}

	t.pendingCallID = "call_" + t.newID()
	t.pendingCallName = c.Name
	t.toolCalls++

	args := c.Args
	if args == nil {
		args = map[string]any{}
	}
	encoded, err := marshal(args)
	if err != nil {
		encoded = []byte("{}")
	}

	d.ToolCalls = []toolCallDelta{{
		Index: 0,
		ID:    t.pendingCallID,
		Type:  "function",
		Function: types.FunctionCall{
			Name:      c.Name,
			Arguments: string(encoded),
		},
	}}
}

func (t *Transformer) encode(d delta, finishReason *string, usage *types.Usage) []byte {
	out, err := encodeSSE(t.buildFrame(d, finishReason, usage))
	if err != nil {
		// Grounding and native tool payloads are the only values that can
		// fail to marshal. Drop them and keep the rest of the delta.
		d.Grounding = nil
		d.NativeToolCalls = nil
		if d.empty() && finishReason == nil {
			return nil
		}
		out, _ = encodeSSE(t.buildFrame(d, finishReason, usage))
	}
	return out
}

func (t *Transformer) buildFrame(d delta, finishReason *string, usage *types.Usage) frame {
	return frame{
		ID:      t.id,
		Object:  objectChunk,
		Created: t.created,
		Model:   t.model,
		Choices: []choice{{Index: 0, Delta: d, FinishReason: finishReason}},
		Usage:   usage,
	}
}
