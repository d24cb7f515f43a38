// Relay serves an OpenAI-compatible chat completions API in front of Gemini
// models.
//
// It translates OpenAI chat requests into Gemini requests (messages, JSON
// schemas, thinking budgets, tool selection) and streams the answer back as
// OpenAI chunks, surfacing model reasoning in one of four output modes.
//
// Usage:
//
//	# Start the server with defaults and environment overrides
//	relay run
//
//	# Start with a configuration file, hot-reloaded on change
//	relay run --config /etc/relay/config.yaml
//
//	# Show the Gemini request a chat request translates to
//	relay translate --file request.json --format yaml
//
//	# Render a recorded chunk stream as SSE frames
//	relay replay --file fixtures/default.jsonl --mode r1
//
//	# Check a configuration file
//	relay validate --config config.yaml
package main

func main() {
	Execute()
}
