package config

import (
	"strings"

	"mercator-hq/relay/pkg/stream"
	"mercator-hq/relay/pkg/translate"
)

// ToolPolicy converts the tools section into the translator's policy.
func (c *Config) ToolPolicy() translate.ToolPolicy {
	priority, ok := translate.ParseToolPriority(c.Tools.Priority)
	if !ok {
		priority = translate.PriorityCustomFirst
	}
	return translate.ToolPolicy{
		NativeEnabled:       c.Tools.NativeEnabled,
		GoogleSearch:        c.Tools.GoogleSearch,
		URLContext:          c.Tools.URLContext,
		Priority:            priority,
		AllowRequestControl: c.Tools.AllowRequestControl,
	}
}

// SafetyThresholds converts the safety section into translator thresholds.
func (c *Config) SafetyThresholds() translate.SafetyThresholds {
	return translate.SafetyThresholds{
		Harassment:       c.Safety.Harassment,
		HateSpeech:       c.Safety.HateSpeech,
		SexuallyExplicit: c.Safety.SexuallyExplicit,
		DangerousContent: c.Safety.DangerousContent,
	}
}

// ServesAllModes reports whether output_mode is "all".
func (c *Config) ServesAllModes() bool {
	return strings.EqualFold(strings.TrimSpace(c.Reasoning.OutputMode), OutputModeAll)
}

// OutputMode returns the configured single output mode. With "all", and for
// any unparsable value, it returns openai, the mode served on the unprefixed
// route.
func (c *Config) OutputMode() stream.OutputMode {
	mode, err := stream.ParseOutputMode(c.Reasoning.OutputMode)
	if err != nil {
		return stream.ModeOpenAI
	}
	return mode
}
