package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/gemini"
	"mercator-hq/relay/pkg/proxy"
	"mercator-hq/relay/pkg/proxy/types"
	"mercator-hq/relay/pkg/stream"
	"mercator-hq/relay/pkg/telemetry/metrics"
)

// fakeBackend replays a fixed chunk list. With hold set, the channel stays
// open after the last chunk until ctx is done.
type fakeBackend struct {
	chunks []stream.Chunk
	err    error
	hold   bool

	model string
	req   *gemini.Request
}

func (b *fakeBackend) Stream(ctx context.Context, model string, req *gemini.Request) (<-chan stream.Chunk, error) {
	b.model = model
	b.req = req
	if b.err != nil {
		return nil, b.err
	}
	ch := make(chan stream.Chunk)
	go func() {
		defer close(ch)
		for _, c := range b.chunks {
			select {
			case ch <- c:
			case <-ctx.Done():
				return
			}
		}
		if b.hold {
			<-ctx.Done()
		}
	}()
	return ch, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCollector(t *testing.T) (*metrics.Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(&config.MetricsConfig{
		Enabled:                true,
		Namespace:              "test",
		RequestDurationBuckets: []float64{0.1, 1},
		MaxModelLabels:         10,
	}, reg)
	return c, reg
}

// counterValue sums the samples of name whose labels include want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metric
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func fixedConfig(mutate func(*config.Config)) func() *config.Config {
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	return func() *config.Config { return cfg }
}

func newTestHandler(b Backend, opts ...ChatOption) *ChatHandler {
	base := []ChatOption{
		WithConfigSource(fixedConfig(nil)),
		WithLogger(quietLogger()),
		WithStreamOptions(stream.WithIDGenerator(func() string { return "test" })),
	}
	return NewChatHandler(b, append(base, opts...)...)
}

func postChat(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// dataFrames returns the payload of every "data:" line in an SSE body.
func dataFrames(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			out = append(out, payload)
		}
	}
	return out
}

func TestChatHandler_StreamOpenAI(t *testing.T) {
	backend := &fakeBackend{chunks: []stream.Chunk{
		stream.RealThinking{Text: "planning"},
		stream.Text{Text: "Hello"},
		stream.Usage{InputTokens: 5, OutputTokens: 7},
	}}
	collector, reg := testCollector(t)
	h := newTestHandler(backend, WithMetrics(collector))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, postChat(`{"model":"gemini-2.5-flash","stream":true,"messages":[{"role":"user","content":"hi"}]}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}
	if got := rec.Header().Get("X-Accel-Buffering"); got != "no" {
		t.Errorf("X-Accel-Buffering = %q, want no", got)
	}

	frames := dataFrames(rec.Body.String())
	if len(frames) < 4 {
		t.Fatalf("got %d frames, want at least 4: %q", len(frames), frames)
	}
	if !strings.Contains(frames[0], `"reasoning":"planning"`) {
		t.Errorf("first frame = %s, want reasoning delta", frames[0])
	}
	if !strings.Contains(frames[1], `"content":"Hello"`) {
		t.Errorf("second frame = %s, want content delta", frames[1])
	}
	if last := frames[len(frames)-1]; last != "[DONE]" {
		t.Errorf("last frame = %q, want [DONE]", last)
	}
	terminal := frames[len(frames)-2]
	if !strings.Contains(terminal, `"finish_reason":"stop"`) || !strings.Contains(terminal, `"total_tokens":12`) {
		t.Errorf("terminal frame = %s, want stop with usage", terminal)
	}

	if got := counterValue(t, reg, "test_requests_total", map[string]string{"status": "success", "stream": "true", "mode": "openai"}); got != 1 {
		t.Errorf("requests_total{success} = %v, want 1", got)
	}
	if got := counterValue(t, reg, "test_tokens_total", map[string]string{"type": "completion"}); got != 7 {
		t.Errorf("tokens_total{completion} = %v, want 7", got)
	}
}

func TestChatHandler_PinnedModes(t *testing.T) {
	tests := []struct {
		name    string
		mode    stream.OutputMode
		want    []string
		notWant []string
	}{
		{
			name:    "tagged",
			mode:    stream.ModeTagged,
			want:    []string{`"content":"<thinking>\nplanning"`, `"content":"Hello"`},
			notWant: []string{`"reasoning"`},
		},
		{
			name:    "hidden",
			mode:    stream.ModeHidden,
			want:    []string{`"content":"Hello"`},
			notWant: []string{"planning"},
		},
		{
			name: "r1",
			mode: stream.ModeR1,
			want: []string{
				`"reasoning_content":"planning"`,
				`"completion_tokens_details":{"reasoning_tokens":0}`,
			},
			notWant: []string{`"reasoning":`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{chunks: []stream.Chunk{
				stream.RealThinking{Text: "planning"},
				stream.Text{Text: "Hello"},
			}}
			h := newTestHandler(backend, WithOutputMode(tt.mode))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, postChat(`{"model":"gemini-2.5-pro","stream":true,"messages":[{"role":"user","content":"hi"}]}`))

			body := rec.Body.String()
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %s:\n%s", s, body)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(body, s) {
					t.Errorf("body unexpectedly contains %s:\n%s", s, body)
				}
			}
			if !strings.HasSuffix(body, "data: [DONE]\n\n") {
				t.Errorf("body does not end with [DONE]:\n%s", body)
			}
		})
	}
}

func TestChatHandler_ModeFromConfig(t *testing.T) {
	backend := &fakeBackend{chunks: []stream.Chunk{
		stream.RealThinking{Text: "planning"},
		stream.Text{Text: "Hello"},
	}}
	h := newTestHandler(backend, WithConfigSource(fixedConfig(func(c *config.Config) {
		c.Reasoning.OutputMode = "hidden"
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, postChat(`{"model":"gemini-2.5-pro","stream":true,"messages":[{"role":"user","content":"hi"}]}`))

	if strings.Contains(rec.Body.String(), "planning") {
		t.Errorf("hidden mode leaked reasoning:\n%s", rec.Body.String())
	}
}

func TestChatHandler_NonStreaming(t *testing.T) {
	tests := []struct {
		name          string
		mode          stream.OutputMode
		wantReasoning string
		wantR1        string
	}{
		{name: "openai", mode: stream.ModeOpenAI, wantReasoning: "planning"},
		{name: "r1", mode: stream.ModeR1, wantR1: "planning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{chunks: []stream.Chunk{
				stream.RealThinking{Text: "planning"},
				stream.Text{Text: "Hel"},
				stream.Text{Text: "lo"},
				stream.Usage{InputTokens: 3, OutputTokens: 4},
			}}
			h := newTestHandler(backend, WithOutputMode(tt.mode))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, postChat(`{"model":"gemini-2.5-pro","messages":[{"role":"user","content":"hi"}]}`))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", got)
			}

			var resp types.ChatCompletionResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(resp.Choices) != 1 {
				t.Fatalf("choices = %d, want 1", len(resp.Choices))
			}
			msg := resp.Choices[0].Message
			if msg.Content != "Hello" {
				t.Errorf("content = %v, want Hello", msg.Content)
			}
			if msg.Reasoning != tt.wantReasoning {
				t.Errorf("reasoning = %q, want %q", msg.Reasoning, tt.wantReasoning)
			}
			if msg.ReasoningContent != tt.wantR1 {
				t.Errorf("reasoning_content = %q, want %q", msg.ReasoningContent, tt.wantR1)
			}
			if resp.Usage.TotalTokens != 7 {
				t.Errorf("total_tokens = %d, want 7", resp.Usage.TotalTokens)
			}
		})
	}
}

func TestChatHandler_RequestErrors(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		body     string
		wantCode string
	}{
		{name: "invalid json", method: http.MethodPost, body: `{"model":`, wantCode: types.CodeInvalidJSON},
		{name: "missing model", method: http.MethodPost, body: `{"messages":[{"role":"user","content":"hi"}]}`, wantCode: types.CodeMissingField},
		{name: "wrong method", method: http.MethodGet, body: "", wantCode: "method_not_allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			collector, reg := testCollector(t)
			h := newTestHandler(backend, WithMetrics(collector))

			req := httptest.NewRequest(tt.method, "/v1/chat/completions", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var errResp types.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if errResp.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", errResp.Error.Code, tt.wantCode)
			}
			if backend.req != nil {
				t.Error("backend called for a rejected request")
			}
			if tt.method == http.MethodPost {
				if got := counterValue(t, reg, "test_requests_total", map[string]string{"status": "client_error"}); got != 1 {
					t.Errorf("requests_total{client_error} = %v, want 1", got)
				}
			}
		})
	}
}

func TestChatHandler_BackendErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "model not found",
			err:        &proxy.BackendError{Kind: proxy.BackendModelNotFound, Err: errors.New("no fixture")},
			wantStatus: http.StatusNotFound,
			wantType:   "model_not_found",
		},
		{
			name:       "unavailable",
			err:        &proxy.BackendError{Kind: proxy.BackendUnavailable, Err: errors.New("down")},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   "unavailable",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusBadGateway,
			wantType:   "failed",
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector, reg := testCollector(t)
			h := newTestHandler(&fakeBackend{err: tt.err}, WithMetrics(collector))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, postChat(`{"model":"gemini-2.5-pro","messages":[{"role":"user","content":"hi"}]}`))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := counterValue(t, reg, "test_backend_errors_total", map[string]string{"error_type": tt.wantType}); got != 1 {
				t.Errorf("backend_errors_total{%s} = %v, want 1", tt.wantType, got)
			}
			if got := counterValue(t, reg, "test_requests_total", map[string]string{"status": "backend_error"}); got != 1 {
				t.Errorf("requests_total{backend_error} = %v, want 1", got)
			}
		})
	}
}

func TestChatHandler_TranslatesRequest(t *testing.T) {
	backend := &fakeBackend{chunks: []stream.Chunk{stream.Text{Text: "ok"}}}
	collector, reg := testCollector(t)
	h := newTestHandler(backend, WithMetrics(collector))

	body := `{
		"model": "gemini-2.5-pro",
		"reasoning_effort": "high",
		"messages": [
			{"role": "system", "content": "be brief"},
			{"role": "user", "content": "hi"}
		],
		"tools": [{"type": "function", "function": {"name": "lookup", "parameters": {"type": "object", "properties": {"q": {"type": "string"}}}}}]
	}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, postChat(body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if backend.model != "gemini-2.5-pro" {
		t.Errorf("backend model = %q, want gemini-2.5-pro", backend.model)
	}
	if backend.req == nil || backend.req.GenerationConfig == nil {
		t.Fatal("backend did not receive a generation config")
	}
	tc := backend.req.GenerationConfig.ThinkingConfig
	if tc == nil {
		t.Fatal("thinkingConfig missing for a reasoning model")
	}
	if tc.ThinkingBudget != 32768 {
		t.Errorf("thinkingBudget = %d, want 32768", tc.ThinkingBudget)
	}
	if !tc.IncludeThoughts {
		t.Error("includeThoughts = false, want true")
	}
	if len(backend.req.Tools) == 0 {
		t.Error("function tools were not forwarded")
	}

	if got := counterValue(t, reg, "test_reasoning_effort_total", map[string]string{"level": "high"}); got != 1 {
		t.Errorf("reasoning_effort_total{high} = %v, want 1", got)
	}
	if got := counterValue(t, reg, "test_tool_family_total", map[string]string{"family": "custom"}); got != 1 {
		t.Errorf("tool_family_total{custom} = %v, want 1", got)
	}
}

// cancelOnWrite cancels the request context after the first body write.
type cancelOnWrite struct {
	*httptest.ResponseRecorder
	cancel context.CancelFunc
}

func (w *cancelOnWrite) Write(p []byte) (int, error) {
	n, err := w.ResponseRecorder.Write(p)
	w.cancel()
	return n, err
}

func TestChatHandler_ClientDisconnect(t *testing.T) {
	backend := &fakeBackend{
		chunks: []stream.Chunk{stream.Text{Text: "partial"}},
		hold:   true,
	}
	collector, reg := testCollector(t)
	h := newTestHandler(backend, WithMetrics(collector))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := postChat(`{"model":"gemini-2.5-pro","stream":true,"messages":[{"role":"user","content":"hi"}]}`).WithContext(ctx)
	rec := &cancelOnWrite{ResponseRecorder: httptest.NewRecorder(), cancel: cancel}

	h.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "partial") {
		t.Errorf("body missing the frame written before disconnect:\n%s", body)
	}
	if strings.Contains(body, "[DONE]") {
		t.Errorf("disconnected stream wrote [DONE]:\n%s", body)
	}
	if got := counterValue(t, reg, "test_requests_total", map[string]string{"status": "cancelled"}); got != 1 {
		t.Errorf("requests_total{cancelled} = %v, want 1", got)
	}
	if got := counterValue(t, reg, "test_stream_disconnects_total", nil); got != 1 {
		t.Errorf("stream_disconnects_total = %v, want 1", got)
	}
}
