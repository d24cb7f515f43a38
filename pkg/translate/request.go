package translate

import (
	"mercator-hq/relay/pkg/gemini"
	"mercator-hq/relay/pkg/proxy/types"
)

// Translation is a fully assembled backend request plus the intermediate
// decisions callers log and count.
type Translation struct {
	Request    *gemini.Request
	Generation *Generation
	Tools      ToolsConfig
}

// BuildRequest converts a validated chat request into a backend request.
// Tool and toolConfig fields are left nil when no tools apply.
func (b *Builder) BuildRequest(req *types.ChatCompletionRequest, realThinkingEnabled bool, policy ToolPolicy) *Translation {
	gen := b.BuildGeneration(req.Model, OptionsFromRequest(req), realThinkingEnabled, req.WantsReasoning())

	toolsCfg := PlanTools(policy, CustomToolsFromRequest(req.Tools), req.ExtraBody)
	resolved := ResolveTools(toolsCfg, req.ToolChoice)

	system, contents := ConvertMessages(req.Messages)
	if contents == nil {
		contents = []gemini.Content{}
	}

	return &Translation{
		Request: &gemini.Request{
			Contents:          contents,
			SystemInstruction: system,
			Tools:             resolved.Tools,
			ToolConfig:        resolved.ToolConfig,
			GenerationConfig:  gen.Config,
			SafetySettings:    gen.SafetySettings,
		},
		Generation: gen,
		Tools:      toolsCfg,
	}
}
