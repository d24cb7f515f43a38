package translate

import (
	"encoding/json"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"mercator-hq/relay/pkg/gemini"
	"mercator-hq/relay/pkg/models"
)

func testBuilder(safety SafetyThresholds) *Builder {
	return NewBuilder(models.Default(), safety, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64     { return &v }

func TestValidateThinkingBudget(t *testing.T) {
	tests := []struct {
		budget     int
		want       int
		wantReason string
	}{
		{budget: 0, want: DefaultThinkingBudget, wantReason: CorrectionZeroBudget},
		{budget: -2, want: DefaultThinkingBudget, wantReason: CorrectionBelowDynamic},
		{budget: -1000, want: DefaultThinkingBudget, wantReason: CorrectionBelowDynamic},
		{budget: -1, want: -1},
		{budget: 1, want: 1},
		{budget: 24576, want: 24576},
	}

	for _, tt := range tests {
		got, reason := ValidateThinkingBudget(tt.budget)
		if got != tt.want || reason != tt.wantReason {
			t.Errorf("ValidateThinkingBudget(%d) = (%d, %q), want (%d, %q)",
				tt.budget, got, reason, tt.want, tt.wantReason)
		}
	}
}

func TestBuildGeneration_Sampling(t *testing.T) {
	b := testBuilder(SafetyThresholds{})

	t.Run("defaults", func(t *testing.T) {
		gen := b.BuildGeneration("gemini-2.0-flash", GenerationOptions{}, true, true)
		cfg := gen.Config
		if cfg.Temperature == nil || *cfg.Temperature != DefaultTemperature {
			t.Errorf("Temperature = %v, want %v", cfg.Temperature, DefaultTemperature)
		}
		if cfg.MaxOutputTokens != nil || cfg.TopP != nil || cfg.StopSequences != nil || cfg.Seed != nil {
			t.Errorf("unset options leaked into config: %+v", cfg)
		}
		if cfg.ThinkingConfig != nil {
			t.Errorf("non-thinking model got ThinkingConfig %+v", cfg.ThinkingConfig)
		}
	})

	t.Run("copies options", func(t *testing.T) {
		opts := GenerationOptions{
			Temperature:      floatPtr(0.2),
			MaxTokens:        intPtr(256),
			TopP:             floatPtr(0.9),
			Stop:             []string{"END"},
			PresencePenalty:  floatPtr(0.5),
			FrequencyPenalty: floatPtr(-0.5),
			Seed:             int64Ptr(7),
			ResponseFormat:   "json_object",
		}
		cfg := b.BuildGeneration("gemini-2.0-flash", opts, false, false).Config

		if *cfg.Temperature != 0.2 || *cfg.MaxOutputTokens != 256 || *cfg.TopP != 0.9 {
			t.Errorf("sampling fields not copied: %+v", cfg)
		}
		if !reflect.DeepEqual(cfg.StopSequences, []string{"END"}) {
			t.Errorf("StopSequences = %v", cfg.StopSequences)
		}
		if *cfg.PresencePenalty != 0.5 || *cfg.FrequencyPenalty != -0.5 || *cfg.Seed != 7 {
			t.Errorf("penalties or seed not copied: %+v", cfg)
		}
		if cfg.ResponseMimeType != "application/json" {
			t.Errorf("ResponseMimeType = %q, want application/json", cfg.ResponseMimeType)
		}
	})

	t.Run("max_completion_tokens fallback", func(t *testing.T) {
		cfg := b.BuildGeneration("x", GenerationOptions{MaxCompletionTokens: intPtr(99)}, false, false).Config
		if cfg.MaxOutputTokens == nil || *cfg.MaxOutputTokens != 99 {
			t.Errorf("MaxOutputTokens = %v, want 99", cfg.MaxOutputTokens)
		}
	})

	t.Run("other response formats ignored", func(t *testing.T) {
		cfg := b.BuildGeneration("x", GenerationOptions{ResponseFormat: "text"}, false, false).Config
		if cfg.ResponseMimeType != "" {
			t.Errorf("ResponseMimeType = %q, want empty", cfg.ResponseMimeType)
		}
	})

	t.Run("no null placeholders", func(t *testing.T) {
		out, err := json.Marshal(b.BuildGeneration("x", GenerationOptions{}, false, false).Config)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(out), "null") {
			t.Errorf("config contains null: %s", out)
		}
		if string(out) != `{"temperature":0.7}` {
			t.Errorf("config = %s", out)
		}
	})
}

func TestBuildGeneration_Thinking(t *testing.T) {
	b := testBuilder(SafetyThresholds{})

	tests := []struct {
		name             string
		model            string
		opts             GenerationOptions
		realThinking     bool
		includeReasoning bool
		want             *gemini.ThinkingConfig
		wantCorrections  int
	}{
		{
			name:             "dynamic budget by default",
			model:            "gemini-2.5-pro",
			realThinking:     true,
			includeReasoning: true,
			want:             &gemini.ThinkingConfig{ThinkingBudget: -1, IncludeThoughts: true},
		},
		{
			name:             "explicit budget",
			model:            "gemini-2.5-pro",
			opts:             GenerationOptions{ThinkingBudget: intPtr(2048)},
			realThinking:     true,
			includeReasoning: true,
			want:             &gemini.ThinkingConfig{ThinkingBudget: 2048, IncludeThoughts: true},
		},
		{
			name:             "zero budget corrected",
			model:            "gemini-2.5-pro",
			opts:             GenerationOptions{ThinkingBudget: intPtr(0)},
			realThinking:     true,
			includeReasoning: true,
			want:             &gemini.ThinkingConfig{ThinkingBudget: -1, IncludeThoughts: true},
			wantCorrections:  1,
		},
		{
			name:             "below dynamic corrected",
			model:            "gemini-2.5-flash",
			opts:             GenerationOptions{ThinkingBudget: intPtr(-5)},
			realThinking:     true,
			includeReasoning: true,
			want:             &gemini.ThinkingConfig{ThinkingBudget: -1, IncludeThoughts: true},
			wantCorrections:  1,
		},
		{
			name:             "real thinking disabled hides thoughts",
			model:            "gemini-2.5-pro",
			opts:             GenerationOptions{ThinkingBudget: intPtr(4096)},
			realThinking:     false,
			includeReasoning: true,
			want:             &gemini.ThinkingConfig{ThinkingBudget: -1, IncludeThoughts: false},
		},
		{
			name:             "reasoning not requested hides thoughts",
			model:            "gemini-2.5-pro",
			realThinking:     true,
			includeReasoning: false,
			want:             &gemini.ThinkingConfig{ThinkingBudget: -1, IncludeThoughts: false},
		},
		{
			name:             "effort none overrides explicit budget",
			model:            "gemini-2.5-pro",
			opts:             GenerationOptions{ThinkingBudget: intPtr(8000), ReasoningEffort: "none"},
			realThinking:     true,
			includeReasoning: true,
			want:             &gemini.ThinkingConfig{ThinkingBudget: -1, IncludeThoughts: false},
			wantCorrections:  1,
		},
		{
			name:             "effort low enables reasoning",
			model:            "gemini-2.5-pro",
			opts:             GenerationOptions{ReasoningEffort: "low"},
			realThinking:     true,
			includeReasoning: false,
			want:             &gemini.ThinkingConfig{ThinkingBudget: 1024, IncludeThoughts: true},
		},
		{
			name:             "effort medium on flash",
			model:            "gemini-2.5-flash",
			opts:             GenerationOptions{ReasoningEffort: "medium"},
			realThinking:     true,
			includeReasoning: true,
			want:             &gemini.ThinkingConfig{ThinkingBudget: 12288, IncludeThoughts: true},
		},
		{
			name:             "effort medium on pro",
			model:            "gemini-2.5-pro",
			opts:             GenerationOptions{ReasoningEffort: "medium"},
			realThinking:     true,
			includeReasoning: true,
			want:             &gemini.ThinkingConfig{ThinkingBudget: 16384, IncludeThoughts: true},
		},
		{
			name:             "effort high on flash",
			model:            "gemini-2.5-flash",
			opts:             GenerationOptions{ReasoningEffort: "high", ThinkingBudget: intPtr(100)},
			realThinking:     true,
			includeReasoning: true,
			want:             &gemini.ThinkingConfig{ThinkingBudget: 24576, IncludeThoughts: true},
		},
		{
			name:             "effort high on pro",
			model:            "gemini-2.5-pro",
			opts:             GenerationOptions{ReasoningEffort: "high"},
			realThinking:     true,
			includeReasoning: true,
			want:             &gemini.ThinkingConfig{ThinkingBudget: 32768, IncludeThoughts: true},
		},
		{
			name:             "invalid effort falls through to budget",
			model:            "gemini-2.5-pro",
			opts:             GenerationOptions{ReasoningEffort: "extreme", ThinkingBudget: intPtr(512)},
			realThinking:     true,
			includeReasoning: true,
			want:             &gemini.ThinkingConfig{ThinkingBudget: 512, IncludeThoughts: true},
		},
		{
			name:             "effort from extra_body",
			model:            "gemini-2.5-flash",
			opts:             GenerationOptions{ExtraBody: json.RawMessage(`{"reasoning_effort":"high"}`)},
			realThinking:     true,
			includeReasoning: true,
			want:             &gemini.ThinkingConfig{ThinkingBudget: 24576, IncludeThoughts: true},
		},
		{
			name:             "unknown model gets no thinking config",
			model:            "gemini-unknown",
			opts:             GenerationOptions{ReasoningEffort: "high"},
			realThinking:     true,
			includeReasoning: true,
			want:             nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := b.BuildGeneration(tt.model, tt.opts, tt.realThinking, tt.includeReasoning)
			if !reflect.DeepEqual(gen.Config.ThinkingConfig, tt.want) {
				t.Errorf("ThinkingConfig = %+v, want %+v", gen.Config.ThinkingConfig, tt.want)
			}
			if len(gen.Corrections) != tt.wantCorrections {
				t.Errorf("Corrections = %+v, want %d entries", gen.Corrections, tt.wantCorrections)
			}
		})
	}
}

func TestBuildGeneration_CorrectionLogged(t *testing.T) {
	var buf strings.Builder
	b := NewBuilder(models.Default(), SafetyThresholds{}, slog.New(slog.NewJSONHandler(&buf, nil)))

	gen := b.BuildGeneration("gemini-2.5-pro", GenerationOptions{ThinkingBudget: intPtr(0)}, true, true)

	if len(gen.Corrections) != 1 {
		t.Fatalf("Corrections = %+v, want 1 entry", gen.Corrections)
	}
	c := gen.Corrections[0]
	if c.Model != "gemini-2.5-pro" || c.Original != 0 || c.Corrected != -1 || c.Reason != CorrectionZeroBudget {
		t.Errorf("correction = %+v", c)
	}

	logged := buf.String()
	if !strings.Contains(logged, `"level":"WARN"`) || !strings.Contains(logged, `"original_budget":0`) {
		t.Errorf("expected WARN log with original budget, got %s", logged)
	}
}

func TestSafetyThresholds_Settings(t *testing.T) {
	tests := []struct {
		name       string
		thresholds SafetyThresholds
		want       []gemini.SafetySetting
	}{
		{
			name:       "none configured",
			thresholds: SafetyThresholds{},
			want:       nil,
		},
		{
			name:       "only non-empty categories",
			thresholds: SafetyThresholds{HateSpeech: "BLOCK_NONE", DangerousContent: "  "},
			want: []gemini.SafetySetting{
				{Category: gemini.HarmCategoryHateSpeech, Threshold: "BLOCK_NONE"},
			},
		},
		{
			name: "fixed category order",
			thresholds: SafetyThresholds{
				DangerousContent: "OFF",
				SexuallyExplicit: "BLOCK_ONLY_HIGH",
				HateSpeech:       "BLOCK_LOW_AND_ABOVE",
				Harassment:       "BLOCK_MEDIUM_AND_ABOVE",
			},
			want: []gemini.SafetySetting{
				{Category: gemini.HarmCategoryHarassment, Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
				{Category: gemini.HarmCategoryHateSpeech, Threshold: "BLOCK_LOW_AND_ABOVE"},
				{Category: gemini.HarmCategorySexuallyExplicit, Threshold: "BLOCK_ONLY_HIGH"},
				{Category: gemini.HarmCategoryDangerousContent, Threshold: "OFF"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.thresholds.Settings(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Settings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
