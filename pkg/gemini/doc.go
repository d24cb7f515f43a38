// Package gemini defines the backend-native request schema consumed by the
// Gemini generateContent and streamGenerateContent endpoints.
//
// Only the subset of the schema produced by the translator is modelled:
// contents and system instructions, the constrained tool-parameter schema
// dialect, function declarations and native capability tools, the
// function-calling configuration, the generation configuration (including
// thinking controls) and safety settings.
//
// All optional fields are pointers or slices tagged with omitempty so that a
// marshalled request never carries explicit null placeholders.
package gemini
