package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/gemini"
	"mercator-hq/relay/pkg/models"
	"mercator-hq/relay/pkg/proxy"
	"mercator-hq/relay/pkg/proxy/types"
	"mercator-hq/relay/pkg/stream"
	"mercator-hq/relay/pkg/telemetry/logging"
	"mercator-hq/relay/pkg/telemetry/metrics"
	"mercator-hq/relay/pkg/telemetry/tracing"
	"mercator-hq/relay/pkg/translate"
)

// Request outcome labels for the requests_total metric.
const (
	statusSuccess      = "success"
	statusClientError  = "client_error"
	statusBackendError = "backend_error"
	statusCancelled    = "cancelled"
)

// Backend produces the chunk stream answering a translated request. The
// channel is closed when the answer is complete or ctx is done.
type Backend interface {
	Stream(ctx context.Context, model string, req *gemini.Request) (<-chan stream.Chunk, error)
}

// ChatHandler serves POST /v1/chat/completions.
type ChatHandler struct {
	backend    Backend
	models     models.Lookup
	config     func() *config.Config
	metrics    *metrics.Collector
	logger     *slog.Logger
	mode       stream.OutputMode
	streamOpts []stream.Option
}

// ChatOption configures a ChatHandler.
type ChatOption func(*ChatHandler)

// WithConfigSource sets where the handler reads its configuration snapshot.
// The default is config.GetConfig.
func WithConfigSource(get func() *config.Config) ChatOption {
	return func(h *ChatHandler) { h.config = get }
}

// WithModels sets the model capability table.
func WithModels(lookup models.Lookup) ChatOption {
	return func(h *ChatHandler) { h.models = lookup }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c *metrics.Collector) ChatOption {
	return func(h *ChatHandler) { h.metrics = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ChatOption {
	return func(h *ChatHandler) { h.logger = l }
}

// WithOutputMode pins the output mode, ignoring the configured one.
func WithOutputMode(mode stream.OutputMode) ChatOption {
	return func(h *ChatHandler) { h.mode = mode }
}

// WithStreamOptions passes options to every Transformer and Collect call.
func WithStreamOptions(opts ...stream.Option) ChatOption {
	return func(h *ChatHandler) { h.streamOpts = append(h.streamOpts, opts...) }
}

// NewChatHandler creates a chat completion handler backed by b.
func NewChatHandler(b Backend, opts ...ChatOption) *ChatHandler {
	h := &ChatHandler{
		backend: b,
		models:  models.Default(),
		config:  config.GetConfig,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeError(ctx, w, &proxy.RequestError{
			Message: "Method " + r.Method + " not allowed. Use POST instead.",
			Code:    "method_not_allowed",
			Param:   "method",
		})
		return
	}

	// One snapshot per request: a reload mid-request must not mix settings.
	cfg := h.config()
	if cfg == nil {
		cfg = config.Default()
	}
	mode := h.mode
	if mode == "" {
		mode = cfg.OutputMode()
	}
	ctx = logging.WithOutputMode(ctx, mode.String())

	req, err := proxy.ParseChatCompletionRequest(r, cfg.Server.MaxRequestBytes)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected chat completion request", "error", err)
		h.metrics.RecordRequest("", mode.String(), false, statusClientError, time.Since(start))
		h.writeError(ctx, w, err)
		return
	}
	ctx = logging.WithModel(ctx, req.Model)

	span := tracing.SpanFromContext(ctx)
	tracing.SetRequestAttributes(span, logging.RequestID(ctx), req.Model, mode.String(), req.Stream)

	tr := h.translate(ctx, cfg, req, span)

	h.logger.InfoContext(ctx, "processing chat completion request",
		"stream", req.Stream,
		"messages", len(req.Messages),
		"tool_family", tr.Tools.Family(),
	)

	backendCtx, cancel := ctx, context.CancelFunc(func() {})
	if cfg.Backend.Timeout > 0 {
		backendCtx, cancel = context.WithTimeout(ctx, cfg.Backend.Timeout)
	}
	defer cancel()

	opened := time.Now()
	chunks, err := h.backend.Stream(backendCtx, req.Model, tr.Request)
	if err != nil {
		berr := asBackendError(req.Model, err)
		h.logger.ErrorContext(ctx, "backend stream failed", "error", err, "error_type", berr.Kind.String())
		h.metrics.RecordBackendError(berr.Kind.String())
		h.metrics.RecordRequest(req.Model, mode.String(), req.Stream, statusBackendError, time.Since(start))
		tracing.SetErrorAttributes(span, err, "backend")
		h.writeError(ctx, w, berr)
		return
	}
	h.metrics.RecordBackendLatency(req.Model, time.Since(opened))

	chunks = stream.Filtered(backendCtx, chunks, mode)

	if req.Stream {
		h.serveStream(ctx, backendCtx, w, req, mode, chunks, start, span)
		return
	}
	h.serveCompletion(ctx, backendCtx, w, req, mode, chunks, start, span)
}

// translate builds the backend request and records the decisions it made.
func (h *ChatHandler) translate(ctx context.Context, cfg *config.Config, req *types.ChatCompletionRequest, span trace.Span) *translate.Translation {
	builder := translate.NewBuilder(h.models, cfg.SafetyThresholds(), h.logger)
	tr := builder.BuildRequest(req, cfg.Reasoning.RealThinking, cfg.ToolPolicy())

	effort := translate.ResolveEffort(req.ReasoningEffort, req.ExtraBody, req.ModelParams)
	if effort != "" {
		if level, ok := translate.ParseEffort(effort); ok {
			effort = string(level)
		} else {
			effort = "invalid"
		}
	}
	h.metrics.RecordEffort(effort)
	h.metrics.RecordToolFamily(tr.Tools.Family())

	var corrections []string
	for _, c := range tr.Generation.Corrections {
		h.metrics.RecordBudgetCorrection(c.Model, c.Reason)
		corrections = append(corrections, c.Reason)
	}

	var budget *int
	includeThoughts := false
	if tc := tr.Request.GenerationConfig.ThinkingConfig; tc != nil {
		b := tc.ThinkingBudget
		budget = &b
		includeThoughts = tc.IncludeThoughts
	}
	tracing.SetThinkingAttributes(span, effort, budget, includeThoughts, corrections)
	tracing.SetToolAttributes(span, len(tr.Tools.CustomTools), tr.Tools.NativeNames())

	return tr
}

func (h *ChatHandler) serveStream(ctx, backendCtx context.Context, w http.ResponseWriter, req *types.ChatCompletionRequest, mode stream.OutputMode, chunks <-chan stream.Chunk, start time.Time, span trace.Span) {
	t := stream.NewTransformer(req.Model, mode, h.streamOpts...)
	sse := proxy.NewSSEWriter(w)

	frames := 0
	writer := stream.FrameWriterFunc(func(frame []byte) error {
		if frames == 0 {
			h.metrics.RecordFirstFrame(mode.String(), time.Since(start))
		}
		frames++
		h.metrics.RecordFrame(mode.String())
		return sse.WriteFrame(frame)
	})

	stats, err := stream.Pipe(backendCtx, chunks, t, writer)
	duration := time.Since(start)

	disconnected := false
	status := statusSuccess
	switch {
	case err == nil:
	case ctx.Err() != nil:
		disconnected = true
		status = statusCancelled
		h.logger.WarnContext(ctx, "client disconnected during streaming",
			"chunks", stats.Chunks,
			"frames", stats.Frames,
		)
	case errors.Is(err, context.DeadlineExceeded):
		status = statusBackendError
		berr := &proxy.BackendError{Kind: proxy.BackendTimeout, Model: req.Model, Err: err}
		h.metrics.RecordBackendError(berr.Kind.String())
		tracing.SetErrorAttributes(span, err, "backend")
		h.logger.ErrorContext(ctx, "backend stream timed out", "chunks", stats.Chunks)
		if sse.Started() {
			if werr := sse.WriteError(proxy.HandleError(berr)); werr != nil {
				h.logger.DebugContext(ctx, "failed to write SSE error", "error", werr)
			}
		} else {
			h.writeError(ctx, w, berr)
		}
	default:
		// Write failures mean the client went away.
		disconnected = true
		status = statusCancelled
		h.logger.WarnContext(ctx, "failed to write stream", "error", err, "frames", stats.Frames)
	}

	usage, hasUsage := t.Usage()
	if hasUsage {
		h.metrics.RecordTokens(req.Model, usage.InputTokens, usage.OutputTokens)
		tracing.SetTokenAttributes(span, usage.InputTokens, usage.OutputTokens)
	}
	h.metrics.RecordToolCalls(req.Model, t.ToolCalls())
	h.metrics.RecordStreamEnd(mode.String(), stats.FinishReason, disconnected, duration)
	h.metrics.RecordRequest(req.Model, mode.String(), true, status, duration)
	tracing.SetStreamAttributes(span, stats.Frames, stats.Chunks, t.ToolCalls(), stats.FinishReason, disconnected)

	if status == statusSuccess {
		h.logger.InfoContext(ctx, "streaming chat completion finished",
			"chunks", stats.Chunks,
			"frames", stats.Frames,
			"tool_calls", t.ToolCalls(),
			"finish_reason", stats.FinishReason,
			"prompt_tokens", usage.InputTokens,
			"completion_tokens", usage.OutputTokens,
			"total_latency_ms", duration.Milliseconds(),
		)
	}
}

func (h *ChatHandler) serveCompletion(ctx, backendCtx context.Context, w http.ResponseWriter, req *types.ChatCompletionRequest, mode stream.OutputMode, chunks <-chan stream.Chunk, start time.Time, span trace.Span) {
	comp, err := stream.Collect(backendCtx, chunks, req.Model, mode, h.streamOpts...)
	duration := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			h.logger.WarnContext(ctx, "client disconnected before completion")
			h.metrics.RecordRequest(req.Model, mode.String(), false, statusCancelled, duration)
			return
		}
		berr := &proxy.BackendError{Kind: proxy.BackendTimeout, Model: req.Model, Err: err}
		h.logger.ErrorContext(ctx, "backend stream timed out")
		h.metrics.RecordBackendError(berr.Kind.String())
		h.metrics.RecordRequest(req.Model, mode.String(), false, statusBackendError, duration)
		tracing.SetErrorAttributes(span, err, "backend")
		h.writeError(ctx, w, berr)
		return
	}

	if comp.Usage != nil {
		h.metrics.RecordTokens(req.Model, comp.Usage.InputTokens, comp.Usage.OutputTokens)
		tracing.SetTokenAttributes(span, comp.Usage.InputTokens, comp.Usage.OutputTokens)
	}
	h.metrics.RecordToolCalls(req.Model, len(comp.ToolCalls))
	h.metrics.RecordRequest(req.Model, mode.String(), false, statusSuccess, duration)

	h.logger.InfoContext(ctx, "chat completion finished",
		"tool_calls", len(comp.ToolCalls),
		"finish_reason", comp.FinishReason,
		"total_latency_ms", duration.Milliseconds(),
	)

	if err := proxy.WriteJSONResponse(w, http.StatusOK, comp.Response()); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

func (h *ChatHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	resp := proxy.HandleError(err)
	if werr := proxy.WriteErrorResponse(w, resp); werr != nil {
		h.logger.ErrorContext(ctx, "failed to write error response", "error", werr)
	}
}

func asBackendError(model string, err error) *proxy.BackendError {
	var berr *proxy.BackendError
	if errors.As(err, &berr) {
		if berr.Model == "" {
			berr.Model = model
		}
		return berr
	}
	kind := proxy.BackendFailed
	if errors.Is(err, context.DeadlineExceeded) {
		kind = proxy.BackendTimeout
	}
	return &proxy.BackendError{Kind: kind, Model: model, Err: err}
}
