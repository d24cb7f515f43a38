package types

import (
	"encoding/json"
	"fmt"
)

// ChatCompletionRequest is an OpenAI-compatible chat completion request, plus
// the reasoning extensions Gemini-aware clients send.
type ChatCompletionRequest struct {
	// Model is the Gemini model id (e.g., "gemini-2.5-flash").
	Model string `json:"model"`

	// Messages is the conversation history.
	Messages []Message `json:"messages"`

	// Temperature controls randomness (0.0 to 2.0). When absent the relay
	// sends its own default.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens caps generated tokens.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// MaxCompletionTokens is the newer spelling of MaxTokens. MaxTokens wins
	// when both are set.
	MaxCompletionTokens *int `json:"max_completion_tokens,omitempty"`

	TopP *float64 `json:"top_p,omitempty"`

	// N must be 1 when set; Gemini returns a single candidate here.
	N *int `json:"n,omitempty"`

	Stream bool `json:"stream,omitempty"`

	// Stop accepts a single string or a list of strings.
	Stop StopSequences `json:"stop,omitempty"`

	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`

	User string `json:"user,omitempty"`

	// Tools lists client-declared functions.
	Tools []Tool `json:"tools,omitempty"`

	// ToolChoice is "auto", "none", or {"type":"function","function":{"name":...}}.
	// It stays loosely typed so malformed values can be ignored instead of
	// failing the request.
	ToolChoice any `json:"tool_choice,omitempty"`

	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	Seed *int64 `json:"seed,omitempty"`

	// ReasoningEffort is one of none, low, medium, high.
	ReasoningEffort string `json:"reasoning_effort,omitempty"`

	// ThinkingBudget is an explicit token budget for reasoning; -1 is dynamic.
	ThinkingBudget *int `json:"thinking_budget,omitempty"`

	// IncludeReasoning asks for thoughts to be surfaced. Defaults to true.
	IncludeReasoning *bool `json:"include_reasoning,omitempty"`

	// ExtraBody and ModelParams are free-form option bags some SDKs use to
	// smuggle non-standard fields. They are kept raw and queried by path.
	ExtraBody   json.RawMessage `json:"extra_body,omitempty"`
	ModelParams json.RawMessage `json:"model_params,omitempty"`
}

// StopSequences decodes the OpenAI "stop" field, which may be a string or an
// array of strings.
type StopSequences []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StopSequences) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StopSequences{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("stop must be a string or an array of strings")
	}
	*s = list
	return nil
}

// Message is a single conversation message.
type Message struct {
	// Role is "system", "developer", "user", "assistant", or "tool".
	Role string `json:"role"`

	// Content is a string or an array of content parts.
	Content any `json:"content"`

	Name string `json:"name,omitempty"`

	// ToolCalls holds assistant function calls replayed from history.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool result to the assistant call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// Tool is a function the model may call.
type Tool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes a callable function.
type FunctionDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Parameters is an arbitrary JSON Schema value.
	Parameters any `json:"parameters,omitempty"`
}

// ToolCall is a function call made by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the function name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ResponseFormat selects the output format ("text" or "json_object").
type ResponseFormat struct {
	Type string `json:"type"`
}

// Validate checks required fields and value ranges.
func (r *ChatCompletionRequest) Validate() error {
	if r.Model == "" {
		return &ValidationError{Field: "model", Message: "model is required"}
	}

	if len(r.Messages) == 0 {
		return &ValidationError{
			Field:   "messages",
			Message: "messages must contain at least one message",
		}
	}

	if r.Temperature != nil && (*r.Temperature < 0.0 || *r.Temperature > 2.0) {
		return &ValidationError{
			Field:   "temperature",
			Message: "temperature must be between 0.0 and 2.0",
		}
	}

	if r.TopP != nil && (*r.TopP < 0.0 || *r.TopP > 1.0) {
		return &ValidationError{
			Field:   "top_p",
			Message: "top_p must be between 0.0 and 1.0",
		}
	}

	if r.MaxTokens != nil && *r.MaxTokens < 1 {
		return &ValidationError{
			Field:   "max_tokens",
			Message: "max_tokens must be greater than 0",
		}
	}

	if r.MaxCompletionTokens != nil && *r.MaxCompletionTokens < 1 {
		return &ValidationError{
			Field:   "max_completion_tokens",
			Message: "max_completion_tokens must be greater than 0",
		}
	}

	if r.N != nil && *r.N != 1 {
		return &ValidationError{Field: "n", Message: "n must be 1"}
	}

	if r.PresencePenalty != nil && (*r.PresencePenalty < -2.0 || *r.PresencePenalty > 2.0) {
		return &ValidationError{
			Field:   "presence_penalty",
			Message: "presence_penalty must be between -2.0 and 2.0",
		}
	}

	if r.FrequencyPenalty != nil && (*r.FrequencyPenalty < -2.0 || *r.FrequencyPenalty > 2.0) {
		return &ValidationError{
			Field:   "frequency_penalty",
			Message: "frequency_penalty must be between -2.0 and 2.0",
		}
	}

	for i, msg := range r.Messages {
		if msg.Role == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: "message role is required",
			}
		}
		if msg.Content == nil && len(msg.ToolCalls) == 0 {
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].content", i),
				Message: "message content is required when no tool_calls present",
			}
		}
	}

	for i, tool := range r.Tools {
		if tool.Function.Name == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("tools[%d].function.name", i),
				Message: "tool function name is required",
			}
		}
	}

	return nil
}

// WantsReasoning reports the include_reasoning flag, defaulting to true.
func (r *ChatCompletionRequest) WantsReasoning() bool {
	return r.IncludeReasoning == nil || *r.IncludeReasoning
}

// ValidationError is a request validation failure on a single field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}
