// Package models holds the capability table for the Gemini models the relay
// exposes. The table answers one question for the translator (does the model
// accept a thinking configuration?) and backs the /v1/models listing.
package models

import "sort"

// Info describes a backend model.
type Info struct {
	// ID is the model identifier clients send in the "model" field.
	ID string

	// Name is a human-readable display name.
	Name string

	// ContextWindow is the maximum number of input tokens.
	ContextWindow int

	// MaxOutputTokens is the maximum number of generated tokens.
	MaxOutputTokens int

	// Thinking marks reasoning-capable models. These models always receive a
	// thinkingConfig and cannot express a zero thinking budget.
	Thinking bool

	// SupportsImages marks models that accept inline image parts.
	SupportsImages bool
}

// Lookup resolves capability metadata for a model id.
type Lookup interface {
	Lookup(id string) (Info, bool)
}

// Registry is an immutable, concurrency-safe model table.
type Registry struct {
	index map[string]Info
}

// NewRegistry builds a registry from the given models. Later entries with a
// duplicate id replace earlier ones.
func NewRegistry(infos ...Info) *Registry {
	idx := make(map[string]Info, len(infos))
	for _, info := range infos {
		idx[info.ID] = info
	}
	return &Registry{index: idx}
}

// Default returns a registry populated with the built-in Gemini models.
func Default() *Registry {
	return NewRegistry(Builtin()...)
}

// Lookup returns the model metadata for id. Unknown ids report false, which
// callers treat as a model without thinking support.
func (r *Registry) Lookup(id string) (Info, bool) {
	info, ok := r.index[id]
	return info, ok
}

// SupportsThinking reports whether id is a known reasoning-capable model.
func (r *Registry) SupportsThinking(id string) bool {
	info, ok := r.index[id]
	return ok && info.Thinking
}

// List returns all models sorted by id.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.index))
	for _, info := range r.index {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Builtin returns the built-in model definitions.
func Builtin() []Info {
	return []Info{
		{
			ID:              "gemini-2.5-pro",
			Name:            "Gemini 2.5 Pro",
			ContextWindow:   1048576,
			MaxOutputTokens: 65536,
			Thinking:        true,
			SupportsImages:  true,
		},
		{
			ID:              "gemini-2.5-flash",
			Name:            "Gemini 2.5 Flash",
			ContextWindow:   1048576,
			MaxOutputTokens: 65536,
			Thinking:        true,
			SupportsImages:  true,
		},
		{
			ID:              "gemini-2.5-flash-lite",
			Name:            "Gemini 2.5 Flash Lite",
			ContextWindow:   1048576,
			MaxOutputTokens: 65536,
			Thinking:        true,
			SupportsImages:  true,
		},
		{
			ID:              "gemini-3-pro-preview",
			Name:            "Gemini 3 Pro Preview",
			ContextWindow:   1048576,
			MaxOutputTokens: 65536,
			Thinking:        true,
			SupportsImages:  true,
		},
		{
			ID:              "gemini-2.0-flash",
			Name:            "Gemini 2.0 Flash",
			ContextWindow:   1048576,
			MaxOutputTokens: 8192,
			Thinking:        false,
			SupportsImages:  true,
		},
	}
}
