package types

// ChatCompletionResponse is the non-streaming response body.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is a single completion choice.
type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// ResponseMessage is the assistant message of a non-streaming completion.
// Content is a string, or nil when the model only called tools.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`

	// Reasoning carries thoughts in the openai output mode.
	Reasoning string `json:"reasoning,omitempty"`

	// ReasoningContent carries thoughts in the r1 output mode.
	ReasoningContent string `json:"reasoning_content,omitempty"`

	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// NativeToolCalls and Grounding surface Gemini-side tool activity.
	NativeToolCalls []NativeToolCall `json:"native_tool_calls,omitempty"`
	Grounding       any              `json:"grounding,omitempty"`
}

// NativeToolCall is a record of a backend-executed tool (e.g. search).
type NativeToolCall struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Usage contains token counts.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// CompletionTokensDetails is only set in the r1 output mode.
	CompletionTokensDetails *CompletionTokensDetails `json:"completion_tokens_details,omitempty"`
}

// CompletionTokensDetails breaks completion tokens down further.
type CompletionTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// ModelList is the /v1/models response body.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// Model is a single /v1/models entry.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}
