package translate

import "mercator-hq/relay/pkg/gemini"

// ConvertSchema rewrites a decoded JSON Schema value into the backend's
// constrained schema dialect.
//
// Only type, description, properties, items, required, enum, format and
// nullable survive; every other keyword is dropped. Malformed shapes degrade
// to omission. A nil result means "no schema" and is returned only when in is
// not a JSON object.
func ConvertSchema(in any) *gemini.Schema {
	obj, ok := in.(map[string]any)
	if !ok {
		return nil
	}

	out := &gemini.Schema{}

	if nullable, ok := obj["nullable"].(bool); ok {
		out.Nullable = nullable
	}

	switch t := obj["type"].(type) {
	case string:
		if mapped, ok := gemini.ParseType(t); ok {
			out.Type = mapped
		}
	case []any:
		name, hasNull := firstNonNullType(t)
		if hasNull {
			out.Nullable = true
		}
		if mapped, ok := gemini.ParseType(name); ok {
			out.Type = mapped
		}
	}

	if desc, ok := obj["description"].(string); ok {
		out.Description = desc
	}
	if format, ok := obj["format"].(string); ok {
		out.Format = format
	}
	if enum, ok := obj["enum"]; ok && enum != nil {
		out.Enum = enum
	}

	if props := convertProperties(normalizeProperties(obj["properties"])); len(props) > 0 {
		out.Properties = props
	}

	switch items := obj["items"].(type) {
	case []any:
		// Tuple-typed arrays are not representable; keep the first element.
		if len(items) > 0 {
			out.Items = ConvertSchema(items[0])
		}
	default:
		out.Items = ConvertSchema(items)
	}

	if required, ok := obj["required"].([]any); ok {
		for _, r := range required {
			if name, ok := r.(string); ok {
				out.Required = append(out.Required, name)
			}
		}
	}

	return out
}

// firstNonNullType picks the first string entry other than "null" from a
// list-valued type and reports whether "null" was present.
func firstNonNullType(types []any) (string, bool) {
	var (
		first   string
		found   bool
		hasNull bool
	)
	for _, t := range types {
		name, ok := t.(string)
		if !ok {
			continue
		}
		if name == "null" {
			hasNull = true
			continue
		}
		if !found {
			first, found = name, true
		}
	}
	return first, hasNull
}

// normalizeProperties accepts the three recognized encodings of a
// "properties" value and returns one canonical name→schema mapping:
//
//  1. a JSON object keyed by property name;
//  2. a list of [name, schema] pairs;
//  3. a list of {key, value} or {name, schema} records.
//
// Entries that match none of these shapes are skipped.
func normalizeProperties(in any) map[string]any {
	switch props := in.(type) {
	case map[string]any:
		return props
	case []any:
		out := make(map[string]any, len(props))
		for _, entry := range props {
			if name, schema, ok := propertyEntry(entry); ok {
				out[name] = schema
			}
		}
		return out
	default:
		return nil
	}
}

func propertyEntry(entry any) (string, any, bool) {
	switch e := entry.(type) {
	case []any:
		if len(e) != 2 {
			return "", nil, false
		}
		name, ok := e[0].(string)
		return name, e[1], ok
	case map[string]any:
		if name, ok := e["key"].(string); ok {
			return name, e["value"], true
		}
		if name, ok := e["name"].(string); ok {
			return name, e["schema"], true
		}
	}
	return "", nil, false
}

func convertProperties(props map[string]any) map[string]*gemini.Schema {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]*gemini.Schema, len(props))
	for name, raw := range props {
		if converted := ConvertSchema(raw); converted != nil {
			out[name] = converted
		}
	}
	return out
}
