package translate

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// EffortLevel is the coarse reasoning hint a client may send.
type EffortLevel string

const (
	EffortNone   EffortLevel = "none"
	EffortLow    EffortLevel = "low"
	EffortMedium EffortLevel = "medium"
	EffortHigh   EffortLevel = "high"
)

// ParseEffort recognizes the four effort levels. Matching is exact after
// trimming surrounding whitespace and lower-casing.
func ParseEffort(s string) (EffortLevel, bool) {
	switch EffortLevel(strings.ToLower(strings.TrimSpace(s))) {
	case EffortNone:
		return EffortNone, true
	case EffortLow:
		return EffortLow, true
	case EffortMedium:
		return EffortMedium, true
	case EffortHigh:
		return EffortHigh, true
	}
	return "", false
}

// Thinking budgets selected by effort level.
const (
	BudgetEffortLow         = 1024
	BudgetEffortMediumFlash = 12288
	BudgetEffortMedium      = 16384
	BudgetEffortHighFlash   = 24576
	BudgetEffortHigh        = 32768
	flashFamilyMarker       = "flash"
)

// EffortBudget maps an effort level to a thinking budget. Medium and high
// depend on whether the model id belongs to the flash family.
func EffortBudget(level EffortLevel, modelID string) int {
	flash := strings.Contains(strings.ToLower(modelID), flashFamilyMarker)
	switch level {
	case EffortLow:
		return BudgetEffortLow
	case EffortMedium:
		if flash {
			return BudgetEffortMediumFlash
		}
		return BudgetEffortMedium
	case EffortHigh:
		if flash {
			return BudgetEffortHighFlash
		}
		return BudgetEffortHigh
	default:
		return 0
	}
}

// ResolveEffort returns the first non-empty reasoning-effort hint, checked in
// order: the top-level field, extra_body.reasoning_effort, then
// model_params.reasoning_effort. The hint is returned verbatim; callers use
// ParseEffort to decide whether it is valid.
func ResolveEffort(topLevel string, extraBody, modelParams json.RawMessage) string {
	if topLevel != "" {
		return topLevel
	}
	for _, raw := range []json.RawMessage{extraBody, modelParams} {
		if v := lookupString(raw, "reasoning_effort"); v != "" {
			return v
		}
	}
	return ""
}

// lookupString reads a string field from a raw JSON object. Anything other
// than a JSON string yields "".
func lookupString(raw json.RawMessage, path string) string {
	if len(raw) == 0 {
		return ""
	}
	res := gjson.GetBytes(raw, path)
	if res.Type != gjson.String {
		return ""
	}
	return res.String()
}

// lookupBool reads a boolean field from a raw JSON object. The second return
// value is false when the field is absent or not a JSON boolean.
func lookupBool(raw json.RawMessage, path string) (bool, bool) {
	if len(raw) == 0 {
		return false, false
	}
	res := gjson.GetBytes(raw, path)
	if !res.IsBool() {
		return false, false
	}
	return res.Bool(), true
}
