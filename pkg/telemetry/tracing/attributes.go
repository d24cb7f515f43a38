package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys set by the relay. HTTP attributes follow the OpenTelemetry
// semantic conventions; everything else lives under "relay.".
const (
	AttrRequestID  = "relay.request_id"
	AttrModel      = "relay.model"
	AttrOutputMode = "relay.output_mode"
	AttrStream     = "relay.stream"

	AttrEffort          = "relay.thinking.effort"
	AttrThinkingBudget  = "relay.thinking.budget"
	AttrIncludeThoughts = "relay.thinking.include_thoughts"
	AttrCorrections     = "relay.thinking.corrections"

	AttrCustomTools = "relay.tools.custom"
	AttrNativeTools = "relay.tools.native"
	AttrToolCalls   = "relay.tools.calls"

	AttrTokensPrompt     = "relay.tokens.prompt"
	AttrTokensCompletion = "relay.tokens.completion"
	AttrTokensTotal      = "relay.tokens.total"

	AttrFrames       = "relay.stream.frames"
	AttrChunks       = "relay.stream.chunks"
	AttrFinishReason = "relay.stream.finish_reason"
	AttrDisconnected = "relay.stream.disconnected"

	AttrErrorType          = "relay.error.type"
	AttrErrorMessage       = "error.message"
	AttrTraceParentInvalid = "relay.traceparent.invalid"
)

// SetRequestAttributes tags a span with the request identity.
func SetRequestAttributes(span trace.Span, requestID, model, mode string, stream bool) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrModel, model),
		attribute.String(AttrOutputMode, mode),
		attribute.Bool(AttrStream, stream),
	}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	span.SetAttributes(attrs...)
}

// SetThinkingAttributes records the thinking configuration sent upstream.
// A nil budget means no thinking config was attached.
func SetThinkingAttributes(span trace.Span, effort string, budget *int, includeThoughts bool, corrections []string) {
	attrs := []attribute.KeyValue{
		attribute.Bool(AttrIncludeThoughts, includeThoughts),
	}
	if effort != "" {
		attrs = append(attrs, attribute.String(AttrEffort, effort))
	}
	if budget != nil {
		attrs = append(attrs, attribute.Int(AttrThinkingBudget, *budget))
	}
	if len(corrections) > 0 {
		attrs = append(attrs, attribute.StringSlice(AttrCorrections, corrections))
	}
	span.SetAttributes(attrs...)
}

// SetToolAttributes records the resolved tool set.
func SetToolAttributes(span trace.Span, customTools int, nativeTools []string) {
	span.SetAttributes(
		attribute.Int(AttrCustomTools, customTools),
		attribute.StringSlice(AttrNativeTools, nativeTools),
	)
}

// SetTokenAttributes records token usage.
func SetTokenAttributes(span trace.Span, promptTokens, completionTokens int) {
	span.SetAttributes(
		attribute.Int(AttrTokensPrompt, promptTokens),
		attribute.Int(AttrTokensCompletion, completionTokens),
		attribute.Int(AttrTokensTotal, promptTokens+completionTokens),
	)
}

// SetStreamAttributes records how a response stream ended.
func SetStreamAttributes(span trace.Span, frames, chunks, toolCalls int, finishReason string, disconnected bool) {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrFrames, frames),
		attribute.Int(AttrChunks, chunks),
		attribute.Int(AttrToolCalls, toolCalls),
		attribute.Bool(AttrDisconnected, disconnected),
	}
	if finishReason != "" {
		attrs = append(attrs, attribute.String(AttrFinishReason, finishReason))
	}
	span.SetAttributes(attrs...)
}

// SetErrorAttributes records err with a coarse type and marks the span
// failed.
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent adds a named event to the span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
