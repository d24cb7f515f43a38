package translate

import (
	"encoding/json"
	"reflect"
	"testing"

	"mercator-hq/relay/pkg/gemini"
)

var weatherTool = CustomTool{
	Name:        "get_weather",
	Description: "Current weather",
	Parameters: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"city": map[string]any{"type": "string"},
		},
		"required": []any{"city"},
	},
}

func TestResolveTools_ToolChoice(t *testing.T) {
	cfg := ToolsConfig{UseCustomTools: true, CustomTools: []CustomTool{weatherTool}}

	tests := []struct {
		name   string
		choice any
		want   *gemini.ToolConfig
	}{
		{
			name:   "auto",
			choice: "auto",
			want:   &gemini.ToolConfig{FunctionCallingConfig: &gemini.FunctionCallingConfig{Mode: gemini.FunctionCallingAuto}},
		},
		{
			name:   "none",
			choice: "none",
			want:   &gemini.ToolConfig{FunctionCallingConfig: &gemini.FunctionCallingConfig{Mode: gemini.FunctionCallingNone}},
		},
		{
			name:   "named function",
			choice: map[string]any{"type": "function", "function": map[string]any{"name": "X"}},
			want: &gemini.ToolConfig{FunctionCallingConfig: &gemini.FunctionCallingConfig{
				Mode:                 gemini.FunctionCallingAny,
				AllowedFunctionNames: []string{"X"},
			}},
		},
		{
			name:   "named function without type",
			choice: map[string]any{"function": map[string]any{"name": "X"}},
			want: &gemini.ToolConfig{FunctionCallingConfig: &gemini.FunctionCallingConfig{
				Mode:                 gemini.FunctionCallingAny,
				AllowedFunctionNames: []string{"X"},
			}},
		},
		{name: "absent", choice: nil, want: nil},
		{name: "required is not recognized", choice: "required", want: nil},
		{name: "missing function name", choice: map[string]any{"type": "function", "function": map[string]any{}}, want: nil},
		{name: "wrong type", choice: map[string]any{"type": "retrieval", "function": map[string]any{"name": "X"}}, want: nil},
		{name: "number", choice: 3.0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveTools(cfg, tt.choice)
			if !reflect.DeepEqual(got.ToolConfig, tt.want) {
				gotJSON, _ := json.Marshal(got.ToolConfig)
				wantJSON, _ := json.Marshal(tt.want)
				t.Errorf("ToolConfig = %s, want %s", gotJSON, wantJSON)
			}
			if len(got.Tools) != 1 {
				t.Errorf("Tools = %d entries, want 1", len(got.Tools))
			}
		})
	}
}

func TestResolveTools_NamedChoiceJSON(t *testing.T) {
	cfg := ToolsConfig{UseCustomTools: true, CustomTools: []CustomTool{weatherTool}}
	res := ResolveTools(cfg, map[string]any{"function": map[string]any{"name": "X"}})

	out, err := json.Marshal(res.ToolConfig)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"functionCallingConfig":{"mode":"ANY","allowedFunctionNames":["X"]}}`
	if string(out) != want {
		t.Errorf("ToolConfig JSON = %s, want %s", out, want)
	}
}

func TestResolveTools_CustomDeclarations(t *testing.T) {
	res := ResolveTools(ToolsConfig{UseCustomTools: true, CustomTools: []CustomTool{weatherTool}}, nil)

	out, err := json.Marshal(res.Tools)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"functionDeclarations":[{"name":"get_weather","description":"Current weather","parameters":{"type":"OBJECT","properties":{"city":{"type":"STRING"}},"required":["city"]}}]}]`
	if string(out) != want {
		t.Errorf("Tools JSON =\n%s\nwant\n%s", out, want)
	}
}

func TestResolveTools_Native(t *testing.T) {
	cfg := ToolsConfig{
		UseNativeTools: true,
		NativeTools: []NativeTool{
			{"googleSearch": map[string]any{}},
			{"url_context": nil},
			{"code_execution": map[string]any{}},
		},
	}

	res := ResolveTools(cfg, "auto")
	if res.ToolConfig != nil {
		t.Errorf("native tools produced ToolConfig %+v", res.ToolConfig)
	}

	out, err := json.Marshal(res.Tools)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"google_search":{}},{"url_context":{}},{"code_execution":{}}]`
	if string(out) != want {
		t.Errorf("Tools JSON = %s, want %s", out, want)
	}
}

func TestResolveTools_NothingApplies(t *testing.T) {
	tests := []struct {
		name string
		cfg  ToolsConfig
	}{
		{name: "zero config", cfg: ToolsConfig{}},
		{name: "custom enabled but empty", cfg: ToolsConfig{UseCustomTools: true}},
		{name: "native enabled but empty", cfg: ToolsConfig{UseNativeTools: true}},
		{name: "tools present but not enabled", cfg: ToolsConfig{CustomTools: []CustomTool{weatherTool}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResolveTools(tt.cfg, "auto")
			if res.Tools != nil || res.ToolConfig != nil {
				t.Errorf("ResolveTools() = %+v, want empty", res)
			}
		})
	}
}

func TestPlanTools(t *testing.T) {
	custom := []CustomTool{weatherTool}

	tests := []struct {
		name       string
		policy     ToolPolicy
		custom     []CustomTool
		extraBody  string
		wantCustom bool
		wantNative bool
	}{
		{
			name:       "custom first with client tools",
			policy:     ToolPolicy{NativeEnabled: true, GoogleSearch: true, Priority: PriorityCustomFirst},
			custom:     custom,
			wantCustom: true,
		},
		{
			name:       "custom first falls back to native",
			policy:     ToolPolicy{NativeEnabled: true, GoogleSearch: true},
			wantNative: true,
		},
		{
			name:       "native first",
			policy:     ToolPolicy{NativeEnabled: true, URLContext: true, Priority: PriorityNativeFirst},
			custom:     custom,
			wantNative: true,
		},
		{
			name:       "native first falls back to custom",
			policy:     ToolPolicy{Priority: PriorityNativeFirst},
			custom:     custom,
			wantCustom: true,
		},
		{
			name:   "native master switch off",
			policy: ToolPolicy{GoogleSearch: true, URLContext: true},
		},
		{
			name:       "request enables search",
			policy:     ToolPolicy{NativeEnabled: true, AllowRequestControl: true},
			extraBody:  `{"enable_search": true}`,
			wantNative: true,
		},
		{
			name:      "request control ignored when not allowed",
			policy:    ToolPolicy{NativeEnabled: true},
			extraBody: `{"enable_search": true, "enable_url_context": true}`,
		},
		{
			name:      "request disables search",
			policy:    ToolPolicy{NativeEnabled: true, GoogleSearch: true, AllowRequestControl: true},
			extraBody: `{"enable_search": false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var extra json.RawMessage
			if tt.extraBody != "" {
				extra = json.RawMessage(tt.extraBody)
			}
			cfg := PlanTools(tt.policy, tt.custom, extra)
			if cfg.UseCustomTools != tt.wantCustom || cfg.UseNativeTools != tt.wantNative {
				t.Errorf("PlanTools() custom=%v native=%v, want custom=%v native=%v",
					cfg.UseCustomTools, cfg.UseNativeTools, tt.wantCustom, tt.wantNative)
			}
			if cfg.UseCustomTools && cfg.UseNativeTools {
				t.Error("both tool families enabled")
			}
		})
	}
}

func TestParseToolPriority(t *testing.T) {
	if p, ok := ParseToolPriority("NATIVE_FIRST"); !ok || p != PriorityNativeFirst {
		t.Errorf("ParseToolPriority(NATIVE_FIRST) = %q, %v", p, ok)
	}
	if _, ok := ParseToolPriority("random"); ok {
		t.Error("ParseToolPriority(random) should fail")
	}
}

func TestToolsConfig_Family(t *testing.T) {
	custom := []CustomTool{{Name: "get_weather"}}
	native := []NativeTool{GoogleSearchTool(), URLContextTool()}

	tests := []struct {
		name      string
		cfg       ToolsConfig
		want      string
		wantNames []string
	}{
		{"custom", ToolsConfig{UseCustomTools: true, CustomTools: custom, NativeTools: native}, FamilyCustom, nil},
		{"native", ToolsConfig{UseNativeTools: true, CustomTools: custom, NativeTools: native}, FamilyNative, []string{"google_search", "url_context"}},
		{"none", ToolsConfig{CustomTools: custom}, FamilyNone, nil},
		{"custom flag without tools", ToolsConfig{UseCustomTools: true}, FamilyNone, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Family(); got != tt.want {
				t.Errorf("Family() = %q, want %q", got, tt.want)
			}
			if got := tt.cfg.NativeNames(); !reflect.DeepEqual(got, tt.wantNames) {
				t.Errorf("NativeNames() = %v, want %v", got, tt.wantNames)
			}
		})
	}
}
