package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"mercator-hq/relay/pkg/proxy/types"
)

// WriteJSONResponse writes data as a JSON body with the given status.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}

// WriteErrorResponse writes an OpenAI error envelope with the status that
// matches its type.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, errResp.Error.HTTPStatusCode(), errResp)
}

// SetSSEHeaders sets the headers for a Server-Sent Events response.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// SSEWriter writes pre-encoded SSE frames and flushes after each one, so
// every frame reaches the client as soon as it is produced.
type SSEWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	started bool
}

// NewSSEWriter wraps w. Headers are sent with the first frame.
func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	return &SSEWriter{w: w, rc: http.NewResponseController(w)}
}

// Start sends the SSE headers and a 200 status.
func (s *SSEWriter) Start() error {
	if s.started {
		return nil
	}
	s.started = true
	SetSSEHeaders(s.w)
	s.w.WriteHeader(http.StatusOK)
	return s.flush()
}

// WriteFrame writes one frame and flushes it.
func (s *SSEWriter) WriteFrame(frame []byte) error {
	if err := s.Start(); err != nil {
		return err
	}
	if _, err := s.w.Write(frame); err != nil {
		return fmt.Errorf("failed to write SSE frame: %w", err)
	}
	return s.flush()
}

// WriteError sends an error envelope as a data frame. It is used when the
// stream fails after headers were sent.
func (s *SSEWriter) WriteError(errResp *types.ErrorResponse) error {
	data, err := json.Marshal(errResp)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE error: %w", err)
	}
	frame := make([]byte, 0, len(data)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, data...)
	frame = append(frame, '\n', '\n')
	return s.WriteFrame(frame)
}

// Started reports whether headers have been sent.
func (s *SSEWriter) Started() bool {
	return s.started
}

func (s *SSEWriter) flush() error {
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush SSE frame: %w", err)
	}
	return nil
}
