// Package handlers implements the relay's OpenAI-compatible endpoints.
//
// ChatHandler serves POST /v1/chat/completions. For each request it:
//
//  1. takes one configuration snapshot and resolves the output mode,
//  2. parses and validates the body,
//  3. translates it into a Gemini request (generation config, safety
//     settings, tools),
//  4. opens the backend chunk stream,
//  5. shapes the chunks for the output mode, then either pipes them through
//     a stream.Transformer as SSE frames or collects them into a single
//     chat.completion body.
//
// A client disconnect ends the stream without a finish frame. Failures
// before the first frame are answered with the OpenAI error envelope.
//
// ModelsHandler serves GET /v1/models from the model registry.
package handlers
