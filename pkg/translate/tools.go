package translate

import (
	"encoding/json"
	"strings"

	"mercator-hq/relay/pkg/gemini"
	"mercator-hq/relay/pkg/proxy/types"
)

// CustomTool is a client-declared function with an arbitrary JSON Schema.
type CustomTool struct {
	Name        string
	Description string
	Parameters  any
}

// NativeTool is a server-enabled backend capability, e.g.
// {"google_search": {}}. Its contents are opaque to the translator.
type NativeTool map[string]any

// Native tool constructors for the capabilities the relay can enable.
func GoogleSearchTool() NativeTool { return NativeTool{"google_search": map[string]any{}} }
func URLContextTool() NativeTool   { return NativeTool{"url_context": map[string]any{}} }

// ToolsConfig is the already-resolved input to ResolveTools. At most one of
// UseCustomTools and UseNativeTools is true.
type ToolsConfig struct {
	UseCustomTools bool
	UseNativeTools bool
	CustomTools    []CustomTool
	NativeTools    []NativeTool
}

// ToolResolution is the tools section of the backend request. Both fields are
// nil when no tools apply, and the request must then omit them.
type ToolResolution struct {
	Tools      []gemini.Tool
	ToolConfig *gemini.ToolConfig
}

// ResolveTools produces the backend tool list and invocation config.
//
// Custom tools become a single functionDeclarations group and toolChoice maps
// to a function calling mode. Native tools are normalized and never carry a
// tool config. Unrecognized tool choices yield no tool config.
func ResolveTools(cfg ToolsConfig, toolChoice any) ToolResolution {
	switch {
	case cfg.UseCustomTools && len(cfg.CustomTools) > 0:
		decls := make([]gemini.FunctionDeclaration, 0, len(cfg.CustomTools))
		for _, t := range cfg.CustomTools {
			decls = append(decls, gemini.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  ConvertSchema(t.Parameters),
			})
		}
		return ToolResolution{
			Tools:      []gemini.Tool{{FunctionDeclarations: decls}},
			ToolConfig: toolConfigFor(toolChoice),
		}

	case cfg.UseNativeTools && len(cfg.NativeTools) > 0:
		tools := make([]gemini.Tool, 0, len(cfg.NativeTools))
		for _, t := range cfg.NativeTools {
			tools = append(tools, normalizeNativeTool(t))
		}
		return ToolResolution{Tools: tools}
	}

	return ToolResolution{}
}

// toolConfigFor maps an OpenAI tool_choice value to a function calling
// config. Recognized forms: "auto", "none", and {"function":{"name":X}} with
// or without "type":"function".
func toolConfigFor(choice any) *gemini.ToolConfig {
	var fc *gemini.FunctionCallingConfig

	switch c := choice.(type) {
	case string:
		switch c {
		case "auto":
			fc = &gemini.FunctionCallingConfig{Mode: gemini.FunctionCallingAuto}
		case "none":
			fc = &gemini.FunctionCallingConfig{Mode: gemini.FunctionCallingNone}
		}
	case map[string]any:
		if typ, ok := c["type"]; ok && typ != "function" {
			return nil
		}
		fn, _ := c["function"].(map[string]any)
		name, _ := fn["name"].(string)
		if name != "" {
			fc = &gemini.FunctionCallingConfig{
				Mode:                 gemini.FunctionCallingAny,
				AllowedFunctionNames: []string{name},
			}
		}
	}

	if fc == nil {
		return nil
	}
	return &gemini.ToolConfig{FunctionCallingConfig: fc}
}

// normalizeNativeTool rewrites the search and URL context capabilities, in
// either snake_case or camelCase, into single-key wrapper tools. Anything else
// is passed through unchanged.
func normalizeNativeTool(t NativeTool) gemini.Tool {
	for _, key := range []string{"google_search", "googleSearch"} {
		if v, ok := t[key]; ok {
			return gemini.Tool{GoogleSearch: gemini.GoogleSearch(objectOrEmpty(v))}
		}
	}
	for _, key := range []string{"url_context", "urlContext"} {
		if v, ok := t[key]; ok {
			return gemini.Tool{URLContext: gemini.URLContext(objectOrEmpty(v))}
		}
	}
	return gemini.Tool{Raw: map[string]any(t)}
}

func objectOrEmpty(v any) map[string]any {
	if m, ok := v.(map[string]any); ok && m != nil {
		return m
	}
	return map[string]any{}
}

// ToolPriority decides which tool family wins when both are available.
type ToolPriority string

const (
	PriorityCustomFirst ToolPriority = "custom_first"
	PriorityNativeFirst ToolPriority = "native_first"
)

// ParseToolPriority accepts the two priorities; anything else reports false.
func ParseToolPriority(s string) (ToolPriority, bool) {
	switch ToolPriority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityCustomFirst:
		return PriorityCustomFirst, true
	case PriorityNativeFirst:
		return PriorityNativeFirst, true
	}
	return "", false
}

// ToolPolicy is the server-side tool configuration.
type ToolPolicy struct {
	// NativeEnabled is the master switch for native tools.
	NativeEnabled bool
	GoogleSearch  bool
	URLContext    bool
	Priority      ToolPriority

	// AllowRequestControl lets extra_body.enable_search and
	// extra_body.enable_url_context override GoogleSearch and URLContext.
	AllowRequestControl bool
}

// PlanTools applies the policy to one request and returns the ToolsConfig
// for ResolveTools. It never enables both families.
func PlanTools(policy ToolPolicy, custom []CustomTool, extraBody json.RawMessage) ToolsConfig {
	search, urlContext := policy.GoogleSearch, policy.URLContext
	if policy.AllowRequestControl {
		if v, ok := lookupBool(extraBody, "enable_search"); ok {
			search = v
		}
		if v, ok := lookupBool(extraBody, "enable_url_context"); ok {
			urlContext = v
		}
	}

	var native []NativeTool
	if policy.NativeEnabled {
		if search {
			native = append(native, GoogleSearchTool())
		}
		if urlContext {
			native = append(native, URLContextTool())
		}
	}

	cfg := ToolsConfig{CustomTools: custom, NativeTools: native}
	hasCustom, hasNative := len(custom) > 0, len(native) > 0

	if policy.Priority == PriorityNativeFirst {
		cfg.UseNativeTools = hasNative
		cfg.UseCustomTools = !hasNative && hasCustom
	} else {
		cfg.UseCustomTools = hasCustom
		cfg.UseNativeTools = !hasCustom && hasNative
	}
	return cfg
}

// CustomToolsFromRequest extracts function tools from a chat request. Tools
// with a type other than "function" are skipped.
func CustomToolsFromRequest(tools []types.Tool) []CustomTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]CustomTool, 0, len(tools))
	for _, t := range tools {
		if t.Type != "" && t.Type != "function" {
			continue
		}
		out = append(out, CustomTool{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  t.Function.Parameters,
		})
	}
	return out
}

// Tool families reported for a resolved ToolsConfig.
const (
	FamilyCustom = "custom"
	FamilyNative = "native"
	FamilyNone   = "none"
)

// Family names the tool family the request is sent with.
func (c ToolsConfig) Family() string {
	switch {
	case c.UseCustomTools && len(c.CustomTools) > 0:
		return FamilyCustom
	case c.UseNativeTools && len(c.NativeTools) > 0:
		return FamilyNative
	default:
		return FamilyNone
	}
}

// NativeNames returns the keys of the enabled native tools, in order.
func (c ToolsConfig) NativeNames() []string {
	if !c.UseNativeTools {
		return nil
	}
	var names []string
	for _, t := range c.NativeTools {
		for name := range t {
			names = append(names, name)
		}
	}
	return names
}
