// Package config loads and validates relay configuration.
//
// Values are applied in this order, later overriding earlier:
//
//  1. Defaults (defaults.go)
//  2. The YAML file
//  3. Environment variables
//
// Reasoning, safety and tool settings are read from unprefixed names such
// as ENABLE_REAL_THINKING, REASONING_OUTPUT_MODE,
// GEMINI_MODERATION_HARASSMENT_THRESHOLD and GEMINI_TOOLS_PRIORITY. Server
// and telemetry settings use the RELAY_ prefix (RELAY_LISTEN_ADDRESS,
// RELAY_LOG_LEVEL).
//
// Validation collects every problem into a ValidationError instead of
// stopping at the first.
//
// # Snapshots
//
// Initialize stores a global snapshot; GetConfig returns it. A snapshot is
// immutable. ReloadConfig and Watcher swap in a new one, so a request that
// read the snapshot once keeps a consistent view even if a reload lands
// mid-stream.
package config
