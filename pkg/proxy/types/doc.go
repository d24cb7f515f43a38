// Package types defines the OpenAI-compatible request and response bodies the
// relay accepts and returns.
//
// Request types:
//   - ChatCompletionRequest: body for /v1/chat/completions, including the
//     reasoning extensions (reasoning_effort, thinking_budget, extra_body)
//   - Message, Tool, ToolCall: conversation and function-calling shapes
//
// Response types:
//   - ChatCompletionResponse: non-streaming response
//   - ModelList: /v1/models response
//   - Usage: token counts, with r1-style completion_tokens_details
//
// Error types:
//   - ErrorResponse, ErrorDetail: the OpenAI error envelope
//
// Streaming frames are not defined here; they are encoded by package stream so
// that field order and null handling stay under its control.
package types
