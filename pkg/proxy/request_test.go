package proxy

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mercator-hq/relay/pkg/proxy/types"
)

func newRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
}

func TestParseChatCompletionRequest(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   bool
		wantCode  string
		wantParam string
	}{
		{
			name: "valid request",
			body: `{"model":"gemini-2.5-flash","messages":[{"role":"user","content":"Hello"}]}`,
		},
		{
			name: "valid request with reasoning extensions",
			body: `{"model":"gemini-2.5-pro","messages":[{"role":"user","content":"Hi"}],
				"reasoning_effort":"high","thinking_budget":2048,"include_reasoning":false,
				"extra_body":{"enable_search":true},"stop":"END"}`,
		},
		{
			name: "assistant tool call without content",
			body: `{"model":"gemini-2.5-flash","messages":[{"role":"assistant","tool_calls":[
				{"id":"call_1","type":"function","function":{"name":"get_weather","arguments":"{}"}}]}]}`,
		},
		{
			name:      "empty body",
			body:      ``,
			wantErr:   true,
			wantCode:  types.CodeInvalidJSON,
			wantParam: "body",
		},
		{
			name:      "malformed JSON",
			body:      `{"model":`,
			wantErr:   true,
			wantCode:  types.CodeInvalidJSON,
			wantParam: "body",
		},
		{
			name:      "missing model",
			body:      `{"messages":[{"role":"user","content":"Hello"}]}`,
			wantErr:   true,
			wantCode:  types.CodeMissingField,
			wantParam: "model",
		},
		{
			name:      "no messages",
			body:      `{"model":"gemini-2.5-flash","messages":[]}`,
			wantErr:   true,
			wantCode:  types.CodeMissingField,
			wantParam: "messages",
		},
		{
			name:      "temperature out of range",
			body:      `{"model":"gemini-2.5-flash","messages":[{"role":"user","content":"Hi"}],"temperature":3}`,
			wantErr:   true,
			wantCode:  types.CodeInvalidValue,
			wantParam: "temperature",
		},
		{
			name:      "n other than one",
			body:      `{"model":"gemini-2.5-flash","messages":[{"role":"user","content":"Hi"}],"n":2}`,
			wantErr:   true,
			wantCode:  types.CodeInvalidValue,
			wantParam: "n",
		},
		{
			name:      "stop of wrong type",
			body:      `{"model":"gemini-2.5-flash","messages":[{"role":"user","content":"Hi"}],"stop":42}`,
			wantErr:   true,
			wantCode:  types.CodeInvalidJSON,
			wantParam: "body",
		},
		{
			name:      "tool without name",
			body:      `{"model":"gemini-2.5-flash","messages":[{"role":"user","content":"Hi"}],"tools":[{"type":"function","function":{}}]}`,
			wantErr:   true,
			wantCode:  types.CodeInvalidValue,
			wantParam: "tools[0].function.name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseChatCompletionRequest(newRequest(tt.body), 0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseChatCompletionRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if req == nil {
					t.Fatal("expected non-nil request")
				}
				return
			}

			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected *RequestError, got %T", err)
			}
			if reqErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", reqErr.Code, tt.wantCode)
			}
			if reqErr.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", reqErr.Param, tt.wantParam)
			}
		})
	}
}

func TestParseChatCompletionRequest_SizeLimit(t *testing.T) {
	body := `{"model":"gemini-2.5-flash","messages":[{"role":"user","content":"Hello"}]}`

	if _, err := ParseChatCompletionRequest(newRequest(body), int64(len(body))); err != nil {
		t.Errorf("body at the limit rejected: %v", err)
	}

	_, err := ParseChatCompletionRequest(newRequest(body), int64(len(body)-1))
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Code != types.CodeRequestTooLarge {
		t.Errorf("oversized body error = %v, want %s", err, types.CodeRequestTooLarge)
	}
}

func TestRequestError_ToErrorResponse(t *testing.T) {
	resp := (&RequestError{Message: "bad", Code: types.CodeInvalidValue, Param: "top_p"}).ToErrorResponse()

	if resp.Error.Type != types.ErrorTypeInvalidRequest {
		t.Errorf("Type = %q", resp.Error.Type)
	}
	if resp.Error.HTTPStatusCode() != http.StatusBadRequest {
		t.Errorf("status = %d", resp.Error.HTTPStatusCode())
	}
	if resp.Error.Param != "top_p" || resp.Error.Message != "bad" {
		t.Errorf("detail = %+v", resp.Error)
	}
}

func TestExtractRequestID(t *testing.T) {
	r := newRequest("")
	if got := ExtractRequestID(r); got != "" {
		t.Errorf("ExtractRequestID() = %q, want empty", got)
	}
	r.Header.Set(RequestIDHeader, "req-42")
	if got := ExtractRequestID(r); got != "req-42" {
		t.Errorf("ExtractRequestID() = %q, want req-42", got)
	}
}
