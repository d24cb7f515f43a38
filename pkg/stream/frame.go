package stream

import (
	"bytes"
	"encoding/json"

	"mercator-hq/relay/pkg/proxy/types"
)

const (
	objectChunk = "chat.completion.chunk"
	roleAsst    = "assistant"

	finishStop      = "stop"
	finishToolCalls = "tool_calls"
)

// DoneFrame is the end-of-stream sentinel.
var DoneFrame = []byte("data: [DONE]\n\n")

var jsonNull = json.RawMessage("null")

// frame is one chat.completion.chunk. Usage is always serialized; it is
// null except on the terminal frame.
type frame struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []choice     `json:"choices"`
	Usage   *types.Usage `json:"usage"`
}

type choice struct {
	Index        int     `json:"index"`
	Delta        delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// delta field order is part of the wire format.
type delta struct {
	Role              string                 `json:"role,omitempty"`
	Content           json.RawMessage        `json:"content,omitempty"`
	Reasoning         *string                `json:"reasoning,omitempty"`
	ReasoningContent  *string                `json:"reasoning_content,omitempty"`
	ReasoningFinished *bool                  `json:"reasoning_finished,omitempty"`
	ToolCalls         []toolCallDelta        `json:"tool_calls,omitempty"`
	NativeToolCalls   []types.NativeToolCall `json:"native_tool_calls,omitempty"`
	Grounding         any                    `json:"grounding,omitempty"`
}

func (d *delta) empty() bool {
	return d.Role == "" &&
		d.Content == nil &&
		d.Reasoning == nil &&
		d.ReasoningContent == nil &&
		d.ReasoningFinished == nil &&
		d.ToolCalls == nil &&
		d.NativeToolCalls == nil &&
		d.Grounding == nil
}

type toolCallDelta struct {
	Index    int                `json:"index"`
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function types.FunctionCall `json:"function"`
}

// encodeSSE renders v as a single "data: <json>\n\n" frame.
func encodeSSE(v any) ([]byte, error) {
	payload, err := marshal(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(payload)+8)
	out = append(out, "data: "...)
	out = append(out, payload...)
	out = append(out, '\n', '\n')
	return out, nil
}

// marshal is json.Marshal without HTML escaping, so tags such as <thinking>
// reach clients verbatim.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func jsonString(s string) json.RawMessage {
	b, _ := marshal(s)
	return b
}
