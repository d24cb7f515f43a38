package translate

import (
	"encoding/json"
	"strings"

	"mercator-hq/relay/pkg/gemini"
	"mercator-hq/relay/pkg/proxy/types"
)

// ConvertMessages splits OpenAI messages into a system instruction and the
// backend conversation contents.
//
// system and developer messages feed the system instruction. assistant
// becomes the model role, with tool_calls replayed as functionCall parts.
// Consecutive tool results are grouped into one user turn of
// functionResponse parts, named after the assistant call they answer.
func ConvertMessages(msgs []types.Message) (*gemini.Content, []gemini.Content) {
	var (
		system    *gemini.Content
		contents  []gemini.Content
		callNames = make(map[string]string)
	)

	for _, msg := range msgs {
		switch msg.Role {
		case "system", "developer":
			parts := textParts(msg.Content)
			if len(parts) == 0 {
				continue
			}
			if system == nil {
				system = &gemini.Content{}
			}
			system.Parts = append(system.Parts, parts...)

		case "assistant":
			parts := contentParts(msg.Content)
			for _, call := range msg.ToolCalls {
				callNames[call.ID] = call.Function.Name
				parts = append(parts, gemini.Part{
					FunctionCall: &gemini.FunctionCall{
						Name: call.Function.Name,
						Args: decodeArguments(call.Function.Arguments),
					},
				})
			}
			if len(parts) > 0 {
				contents = append(contents, gemini.Content{Role: gemini.RoleModel, Parts: parts})
			}

		case "tool":
			name := callNames[msg.ToolCallID]
			if name == "" {
				name = msg.Name
			}
			part := gemini.Part{
				FunctionResponse: &gemini.FunctionResponse{
					Name:     name,
					Response: map[string]any{"result": flattenText(msg.Content)},
				},
			}
			if n := len(contents); n > 0 && isFunctionResponseTurn(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, gemini.Content{Role: gemini.RoleUser, Parts: []gemini.Part{part}})

		default:
			parts := contentParts(msg.Content)
			if len(parts) > 0 {
				contents = append(contents, gemini.Content{Role: gemini.RoleUser, Parts: parts})
			}
		}
	}

	return system, contents
}

func isFunctionResponseTurn(c gemini.Content) bool {
	if c.Role != gemini.RoleUser || len(c.Parts) == 0 {
		return false
	}
	for _, p := range c.Parts {
		if p.FunctionResponse == nil {
			return false
		}
	}
	return true
}

// decodeArguments parses a JSON-encoded arguments string. Invalid or
// non-object JSON becomes an empty object.
func decodeArguments(s string) map[string]any {
	args := map[string]any{}
	if strings.TrimSpace(s) == "" {
		return args
	}
	if err := json.Unmarshal([]byte(s), &args); err != nil || args == nil {
		return map[string]any{}
	}
	return args
}

// contentParts converts message content (a string or a list of typed parts)
// into backend parts. Empty text is skipped.
func contentParts(content any) []gemini.Part {
	switch c := content.(type) {
	case string:
		if c == "" {
			return nil
		}
		return []gemini.Part{{Text: c}}
	case []any:
		var parts []gemini.Part
		for _, raw := range c {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			switch item["type"] {
			case "text":
				if text, _ := item["text"].(string); text != "" {
					parts = append(parts, gemini.Part{Text: text})
				}
			case "image_url":
				if part, ok := imagePart(item["image_url"]); ok {
					parts = append(parts, part)
				}
			}
		}
		return parts
	}
	return nil
}

// textParts keeps only the text of the content.
func textParts(content any) []gemini.Part {
	var out []gemini.Part
	for _, p := range contentParts(content) {
		if p.Text != "" {
			out = append(out, p)
		}
	}
	return out
}

// flattenText joins all text in the content into one string.
func flattenText(content any) string {
	parts := textParts(content)
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n")
}

// imagePart accepts {"url": "..."} or a bare URL string. Data URLs become
// inline data; anything else is referenced by URI.
func imagePart(v any) (gemini.Part, bool) {
	var url string
	switch img := v.(type) {
	case string:
		url = img
	case map[string]any:
		url, _ = img["url"].(string)
	}
	if url == "" {
		return gemini.Part{}, false
	}

	if rest, ok := strings.CutPrefix(url, "data:"); ok {
		meta, data, found := strings.Cut(rest, ",")
		if !found {
			return gemini.Part{}, false
		}
		mime, _, _ := strings.Cut(meta, ";")
		return gemini.Part{InlineData: &gemini.Blob{MimeType: mime, Data: data}}, true
	}

	return gemini.Part{FileData: &gemini.FileData{FileURI: url}}, true
}
