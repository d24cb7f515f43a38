package stream

import (
	"fmt"
	"strings"
)

// OutputMode selects how reasoning is surfaced to clients. It is fixed for
// the lifetime of a stream.
type OutputMode string

const (
	// ModeOpenAI puts reasoning in delta.reasoning.
	ModeOpenAI OutputMode = "openai"

	// ModeTagged inlines reasoning into content inside <thinking> tags.
	ModeTagged OutputMode = "tagged"

	// ModeHidden drops reasoning entirely.
	ModeHidden OutputMode = "hidden"

	// ModeR1 puts reasoning in delta.reasoning_content and reports
	// completion_tokens_details in the final usage.
	ModeR1 OutputMode = "r1"
)

// Modes lists every output mode.
var Modes = []OutputMode{ModeOpenAI, ModeTagged, ModeHidden, ModeR1}

// ParseOutputMode resolves a mode name, accepting the legacy aliases
// "field" (openai) and "think-tags" (tagged).
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai", "field":
		return ModeOpenAI, nil
	case "tagged", "think-tags":
		return ModeTagged, nil
	case "hidden":
		return ModeHidden, nil
	case "r1":
		return ModeR1, nil
	default:
		return "", fmt.Errorf("unknown output mode %q", s)
	}
}

func (m OutputMode) String() string {
	return string(m)
}
