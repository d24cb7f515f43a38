package translate

import (
	"encoding/json"
	"log/slog"
	"strings"

	"mercator-hq/relay/pkg/gemini"
	"mercator-hq/relay/pkg/models"
	"mercator-hq/relay/pkg/proxy/types"
)

const (
	// DefaultTemperature is sent when the client omits temperature.
	DefaultTemperature = 0.7

	// DefaultThinkingBudget asks the backend to size the budget dynamically.
	DefaultThinkingBudget = -1

	jsonMimeType = "application/json"
)

// GenerationOptions are the client-supplied knobs that shape the generation
// config. Nil pointers mean "not supplied".
type GenerationOptions struct {
	Temperature         *float64
	MaxTokens           *int
	MaxCompletionTokens *int
	TopP                *float64
	Stop                []string
	PresencePenalty     *float64
	FrequencyPenalty    *float64
	Seed                *int64

	// ResponseFormat is response_format.type.
	ResponseFormat string

	ThinkingBudget  *int
	ReasoningEffort string

	// ExtraBody and ModelParams are searched for a reasoning_effort hint when
	// ReasoningEffort is empty.
	ExtraBody   json.RawMessage
	ModelParams json.RawMessage
}

// OptionsFromRequest extracts generation options from a chat request.
func OptionsFromRequest(req *types.ChatCompletionRequest) GenerationOptions {
	opts := GenerationOptions{
		Temperature:         req.Temperature,
		MaxTokens:           req.MaxTokens,
		MaxCompletionTokens: req.MaxCompletionTokens,
		TopP:                req.TopP,
		Stop:                req.Stop,
		PresencePenalty:     req.PresencePenalty,
		FrequencyPenalty:    req.FrequencyPenalty,
		Seed:                req.Seed,
		ThinkingBudget:      req.ThinkingBudget,
		ReasoningEffort:     req.ReasoningEffort,
		ExtraBody:           req.ExtraBody,
		ModelParams:         req.ModelParams,
	}
	if req.ResponseFormat != nil {
		opts.ResponseFormat = req.ResponseFormat.Type
	}
	return opts
}

// SafetyThresholds holds the configured block threshold per harm category.
// An empty threshold leaves that category at the backend default.
type SafetyThresholds struct {
	Harassment       string
	HateSpeech       string
	SexuallyExplicit string
	DangerousContent string
}

// Settings returns one safety setting per non-empty threshold, in a fixed
// category order.
func (t SafetyThresholds) Settings() []gemini.SafetySetting {
	entries := []struct {
		category  gemini.HarmCategory
		threshold string
	}{
		{gemini.HarmCategoryHarassment, t.Harassment},
		{gemini.HarmCategoryHateSpeech, t.HateSpeech},
		{gemini.HarmCategorySexuallyExplicit, t.SexuallyExplicit},
		{gemini.HarmCategoryDangerousContent, t.DangerousContent},
	}

	var out []gemini.SafetySetting
	for _, e := range entries {
		threshold := strings.TrimSpace(e.threshold)
		if threshold == "" {
			continue
		}
		out = append(out, gemini.SafetySetting{Category: e.category, Threshold: threshold})
	}
	return out
}

// Budget correction reasons.
const (
	CorrectionZeroBudget   = "zero_budget"
	CorrectionBelowDynamic = "below_dynamic"
)

// BudgetCorrection records a thinking budget that was replaced because the
// model cannot express it.
type BudgetCorrection struct {
	Model     string
	Original  int
	Corrected int
	Reason    string
}

// ValidateThinkingBudget returns the budget a reasoning-capable model will
// accept. Zero and anything below the dynamic sentinel become the sentinel;
// the returned reason is empty when no correction was needed.
func ValidateThinkingBudget(budget int) (int, string) {
	switch {
	case budget == 0:
		return DefaultThinkingBudget, CorrectionZeroBudget
	case budget < DefaultThinkingBudget:
		return DefaultThinkingBudget, CorrectionBelowDynamic
	default:
		return budget, ""
	}
}

// Generation is the output of BuildGeneration.
type Generation struct {
	Config         *gemini.GenerationConfig
	SafetySettings []gemini.SafetySetting

	// Corrections lists thinking budgets that were adjusted.
	Corrections []BudgetCorrection
}

// Builder turns client options into backend request pieces. It holds no
// per-request state and is safe for concurrent use.
type Builder struct {
	models models.Lookup
	safety SafetyThresholds
	logger *slog.Logger
}

// NewBuilder creates a Builder. A nil logger uses slog.Default().
func NewBuilder(lookup models.Lookup, safety SafetyThresholds, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		models: lookup,
		safety: safety,
		logger: logger,
	}
}

// BuildGeneration assembles the generation config and safety settings.
//
// For reasoning-capable models a thinkingConfig is always present. When
// reasoning is not enabled (realThinkingEnabled && includeReasoning), the
// budget falls back to the dynamic sentinel and thoughts are hidden rather
// than disabled. A valid reasoning effort hint overrides both the explicit
// budget and includeReasoning.
func (b *Builder) BuildGeneration(modelID string, opts GenerationOptions, realThinkingEnabled, includeReasoning bool) *Generation {
	gen := &Generation{
		Config:         samplingConfig(opts),
		SafetySettings: b.safety.Settings(),
	}

	if !b.supportsThinking(modelID) {
		return gen
	}

	budget := DefaultThinkingBudget
	if opts.ThinkingBudget != nil {
		budget = *opts.ThinkingBudget
	}

	if hint := ResolveEffort(opts.ReasoningEffort, opts.ExtraBody, opts.ModelParams); hint != "" {
		if level, ok := ParseEffort(hint); ok {
			budget = EffortBudget(level, modelID)
			includeReasoning = level != EffortNone
		} else {
			b.logger.Debug("ignoring unrecognized reasoning effort",
				"model", modelID,
				"reasoning_effort", hint,
			)
		}
	}

	validated := b.validateBudget(gen, modelID, budget)

	if realThinkingEnabled && includeReasoning {
		gen.Config.ThinkingConfig = &gemini.ThinkingConfig{
			ThinkingBudget:  validated,
			IncludeThoughts: true,
		}
	} else {
		gen.Config.ThinkingConfig = &gemini.ThinkingConfig{
			ThinkingBudget:  b.validateBudget(gen, modelID, DefaultThinkingBudget),
			IncludeThoughts: false,
		}
	}

	return gen
}

func (b *Builder) supportsThinking(modelID string) bool {
	if b.models == nil {
		return false
	}
	info, ok := b.models.Lookup(modelID)
	return ok && info.Thinking
}

func (b *Builder) validateBudget(gen *Generation, modelID string, budget int) int {
	corrected, reason := ValidateThinkingBudget(budget)
	if reason == "" {
		return corrected
	}

	b.logger.Warn("corrected thinking budget",
		"model", modelID,
		"original_budget", budget,
		"budget", corrected,
		"reason", reason,
	)
	gen.Corrections = append(gen.Corrections, BudgetCorrection{
		Model:     modelID,
		Original:  budget,
		Corrected: corrected,
		Reason:    reason,
	})
	return corrected
}

func samplingConfig(opts GenerationOptions) *gemini.GenerationConfig {
	temperature := DefaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	cfg := &gemini.GenerationConfig{
		Temperature:      &temperature,
		TopP:             opts.TopP,
		PresencePenalty:  opts.PresencePenalty,
		FrequencyPenalty: opts.FrequencyPenalty,
		Seed:             opts.Seed,
	}

	switch {
	case opts.MaxTokens != nil:
		cfg.MaxOutputTokens = opts.MaxTokens
	case opts.MaxCompletionTokens != nil:
		cfg.MaxOutputTokens = opts.MaxCompletionTokens
	}

	if len(opts.Stop) > 0 {
		cfg.StopSequences = append([]string(nil), opts.Stop...)
	}

	if opts.ResponseFormat == "json_object" {
		cfg.ResponseMimeType = jsonMimeType
	}

	return cfg
}
