// Package logging builds the relay's structured logger on log/slog.
//
// New returns a *slog.Logger whose handler does two things on top of the
// JSON or text output:
//
//   - Request-scoped fields stored in the context (request_id, model,
//     output_mode) and the active trace and span ids are added to every
//     record logged with a *Context method.
//   - When redaction is enabled, attribute values that look like API keys,
//     bearer tokens, emails or passwords are masked. Values under sensitive
//     keys such as api_key or authorization are masked whole.
//
// Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json", RedactSecrets: true})
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "request completed", "status", 200)
package logging
