// Package proxy holds the HTTP plumbing shared by the relay's handlers.
//
// It parses and validates OpenAI chat completion bodies, maps failures to the
// OpenAI error envelope and writes JSON and Server-Sent Events responses.
//
// Request errors are reported as *RequestError and become 400 responses.
// Failures of the chunk source are wrapped in *BackendError, whose Kind picks
// the status:
//
//	BackendModelNotFound  404 not_found / model_not_found
//	BackendUnavailable    503 service_unavailable
//	BackendTimeout        504 gateway_timeout
//	BackendFailed         502 bad_gateway
//
// Anything else becomes a 500 whose message hides the cause.
//
// SSEWriter implements stream.FrameWriter: each frame is written and flushed
// before the next chunk is read, so clients see deltas as they are produced.
//
//	req, err := proxy.ParseChatCompletionRequest(r, cfg.Server.MaxRequestBytes)
//	if err != nil {
//		proxy.WriteErrorResponse(w, proxy.HandleError(err))
//		return
//	}
package proxy
