package stream

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Chunk is one decoded backend event. The set of implementations is closed;
// the transformer handles each kind explicitly.
type Chunk interface {
	chunk()
}

// Text is answer text.
type Text struct {
	Text string
}

// ThinkingContent is reasoning text already rendered into the answer body,
// e.g. wrapped in <thinking> tags.
type ThinkingContent struct {
	Text string
}

// RealThinking is a thought summary produced by the model's native
// reasoning.
type RealThinking struct {
	Text string
}

// Reasoning is a reasoning step. ToolCode optionally carries code the model
// produced while reasoning; it is not forwarded to clients.
type Reasoning struct {
	Reasoning string
	ToolCode  string
}

// ReasoningEnd marks the end of the reasoning phase.
type ReasoningEnd struct {
	Finished bool
}

// ToolCode is a function call requested by the model.
type ToolCode struct {
	Name string
	Args map[string]any
}

// NativeTool records a backend-executed tool such as search.
type NativeTool struct {
	Type string
	Data any
}

// GroundingMetadata carries citations and search entry points.
type GroundingMetadata struct {
	Data any
}

// Usage reports token counts. It may arrive anywhere before the stream
// closes and replaces any earlier report.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Unknown is a chunk kind this version does not understand. It produces no
// output.
type Unknown struct {
	Type string
}

func (Text) chunk()              {}
func (ThinkingContent) chunk()   {}
func (RealThinking) chunk()      {}
func (Reasoning) chunk()         {}
func (ReasoningEnd) chunk()      {}
func (ToolCode) chunk()          {}
func (NativeTool) chunk()        {}
func (GroundingMetadata) chunk() {}
func (Usage) chunk()             {}
func (Unknown) chunk()           {}

// Chunk type tags used on the wire.
const (
	KindText              = "text"
	KindThinkingContent   = "thinking_content"
	KindRealThinking      = "real_thinking"
	KindReasoning         = "reasoning"
	KindReasoningEnd      = "reasoning_end"
	KindToolCode          = "tool_code"
	KindNativeTool        = "native_tool"
	KindGroundingMetadata = "grounding_metadata"
	KindUsage             = "usage"
)

// ErrInvalidChunk is returned by DecodeChunk for input that is not a JSON
// object with a string "type".
var ErrInvalidChunk = errors.New("invalid chunk envelope")

// DecodeChunk parses a {"type": ..., "data": ...} envelope:
//
//	{"type":"text","data":"Hi"}
//	{"type":"reasoning","data":{"reasoning":"...","toolCode":"..."}}
//	{"type":"reasoning_end","data":{"finished":true}}
//	{"type":"tool_code","data":{"name":"f","args":{"x":1}}}
//	{"type":"native_tool","data":{"type":"google_search","data":{...}}}
//	{"type":"grounding_metadata","data":{...}}
//	{"type":"usage","data":{"inputTokens":10,"outputTokens":5}}
//
// Unrecognized types decode to Unknown rather than failing.
func DecodeChunk(raw []byte) (Chunk, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidChunk
	}
	env := gjson.ParseBytes(raw)
	if !env.IsObject() {
		return nil, ErrInvalidChunk
	}
	kind := env.Get("type")
	if kind.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidChunk)
	}
	data := env.Get("data")

	switch kind.String() {
	case KindText:
		return Text{Text: data.String()}, nil
	case KindThinkingContent:
		return ThinkingContent{Text: data.String()}, nil
	case KindRealThinking:
		return RealThinking{Text: data.String()}, nil
	case KindReasoning:
		if data.Type == gjson.String {
			return Reasoning{Reasoning: data.String()}, nil
		}
		return Reasoning{
			Reasoning: data.Get("reasoning").String(),
			ToolCode:  data.Get("toolCode").String(),
		}, nil
	case KindReasoningEnd:
		if data.IsBool() {
			return ReasoningEnd{Finished: data.Bool()}, nil
		}
		return ReasoningEnd{Finished: data.Get("finished").Bool()}, nil
	case KindToolCode:
		args, _ := data.Get("args").Value().(map[string]any)
		return ToolCode{Name: data.Get("name").String(), Args: args}, nil
	case KindNativeTool:
		return NativeTool{Type: data.Get("type").String(), Data: data.Get("data").Value()}, nil
	case KindGroundingMetadata:
		return GroundingMetadata{Data: data.Value()}, nil
	case KindUsage:
		return Usage{
			InputTokens:  int(data.Get("inputTokens").Int()),
			OutputTokens: int(data.Get("outputTokens").Int()),
		}, nil
	default:
		return Unknown{Type: kind.String()}, nil
	}
}
