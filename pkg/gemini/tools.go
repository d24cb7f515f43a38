package gemini

import "encoding/json"

// FunctionDeclaration describes a client-declared function the model may call.
type FunctionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// GoogleSearch enables the backend's web search capability. Its fields are
// opaque configuration forwarded as received.
type GoogleSearch map[string]any

// URLContext enables the backend's URL fetching capability.
type URLContext map[string]any

// Tool is one entry of the request "tools" list. Exactly one of its fields is
// set. Raw carries a native tool object the translator does not recognize and
// is marshalled verbatim.
type Tool struct {
	FunctionDeclarations []FunctionDeclaration
	GoogleSearch         GoogleSearch
	URLContext           URLContext
	Raw                  map[string]any
}

// MarshalJSON renders the tool as a single-key wrapper object, or the raw
// object for pass-through tools.
func (t Tool) MarshalJSON() ([]byte, error) {
	switch {
	case t.FunctionDeclarations != nil:
		return json.Marshal(struct {
			FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
		}{t.FunctionDeclarations})
	case t.GoogleSearch != nil:
		return json.Marshal(struct {
			GoogleSearch GoogleSearch `json:"google_search"`
		}{t.GoogleSearch})
	case t.URLContext != nil:
		return json.Marshal(struct {
			URLContext URLContext `json:"url_context"`
		}{t.URLContext})
	case t.Raw != nil:
		return json.Marshal(t.Raw)
	default:
		return []byte("{}"), nil
	}
}

// FunctionCallingMode selects how the model may invoke declared functions.
type FunctionCallingMode string

const (
	FunctionCallingAuto FunctionCallingMode = "AUTO"
	FunctionCallingAny  FunctionCallingMode = "ANY"
	FunctionCallingNone FunctionCallingMode = "NONE"
)

// FunctionCallingConfig constrains function invocation.
type FunctionCallingConfig struct {
	Mode                 FunctionCallingMode `json:"mode"`
	AllowedFunctionNames []string            `json:"allowedFunctionNames,omitempty"`
}

// ToolConfig is the request-level tool invocation configuration.
type ToolConfig struct {
	FunctionCallingConfig *FunctionCallingConfig `json:"functionCallingConfig,omitempty"`
}
