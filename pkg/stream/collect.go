package stream

import (
	"context"
	"strings"

	"mercator-hq/relay/pkg/proxy/types"
)

// Completion is a whole chunk sequence folded into one assistant message,
// for clients that did not ask for streaming.
type Completion struct {
	ID      string
	Created int64
	Model   string
	Mode    OutputMode

	Content   string
	Reasoning string

	ToolCalls       []types.ToolCall
	NativeToolCalls []types.NativeToolCall
	Grounding       any

	Usage        *Usage
	FinishReason string
}

// Collect drains src and aggregates it. Chunks are expected to have passed
// through the mode Filter already. If ctx ends first, the partial result is
// returned with ctx's error.
func Collect(ctx context.Context, src <-chan Chunk, model string, mode OutputMode, opts ...Option) (*Completion, error) {
	o := buildOptions(opts)
	comp := &Completion{
		ID:      "chatcmpl-" + o.newID(),
		Created: o.now().Unix(),
		Model:   model,
		Mode:    mode,
	}

	var content, reasoning strings.Builder

	for {
		select {
		case <-ctx.Done():
			return comp, ctx.Err()

		case c, ok := <-src:
			if !ok {
				comp.Content = content.String()
				comp.Reasoning = reasoning.String()
				comp.FinishReason = finishStop
				if len(comp.ToolCalls) > 0 {
					comp.FinishReason = finishToolCalls
				}
				return comp, nil
			}

			switch c := c.(type) {
			case Text:
				content.WriteString(c.Text)
			case ThinkingContent:
				content.WriteString(c.Text)
			case RealThinking:
				reasoning.WriteString(c.Text)
			case Reasoning:
				reasoning.WriteString(c.Reasoning)
			case ToolCode:
				args := c.Args
				if args == nil {
					args = map[string]any{}
				}
				encoded, err := marshal(args)
				if err != nil {
					encoded = []byte("{}")
				}
				comp.ToolCalls = append(comp.ToolCalls, types.ToolCall{
					ID:   "call_" + o.newID(),
					Type: "function",
					Function: types.FunctionCall{
						Name:      c.Name,
						Arguments: string(encoded),
					},
				})
			case NativeTool:
				comp.NativeToolCalls = append(comp.NativeToolCalls, types.NativeToolCall{Type: c.Type, Data: c.Data})
			case GroundingMetadata:
				comp.Grounding = c.Data
			case Usage:
				u := c
				comp.Usage = &u
			}
		}
	}
}

// Response renders the completion as a chat.completion body. Reasoning goes
// to "reasoning" or, in r1 mode, "reasoning_content".
func (c *Completion) Response() *types.ChatCompletionResponse {
	msg := types.ResponseMessage{
		Role:            roleAsst,
		ToolCalls:       c.ToolCalls,
		NativeToolCalls: c.NativeToolCalls,
		Grounding:       c.Grounding,
	}
	if c.Content != "" || len(c.ToolCalls) == 0 {
		msg.Content = c.Content
	}
	if c.Mode == ModeR1 {
		msg.ReasoningContent = c.Reasoning
	} else {
		msg.Reasoning = c.Reasoning
	}

	var usage types.Usage
	if c.Usage != nil {
		usage = types.Usage{
			PromptTokens:     c.Usage.InputTokens,
			CompletionTokens: c.Usage.OutputTokens,
			TotalTokens:      c.Usage.InputTokens + c.Usage.OutputTokens,
		}
	}
	if c.Mode == ModeR1 {
		usage.CompletionTokensDetails = &types.CompletionTokensDetails{ReasoningTokens: 0}
	}

	return &types.ChatCompletionResponse{
		ID:      c.ID,
		Object:  "chat.completion",
		Created: c.Created,
		Model:   c.Model,
		Choices: []types.Choice{{
			Index:        0,
			Message:      msg,
			FinishReason: c.FinishReason,
		}},
		Usage: usage,
	}
}
