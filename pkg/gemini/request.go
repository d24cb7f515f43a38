package gemini

// Request is the body of a generateContent / streamGenerateContent call.
type Request struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	Tools             []Tool            `json:"tools,omitempty"`
	ToolConfig        *ToolConfig       `json:"toolConfig,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings    []SafetySetting   `json:"safetySettings,omitempty"`
}

// Content is one conversational turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is a typed content part. Exactly one field is set.
type Part struct {
	Text             string            `json:"text,omitempty"`
	InlineData       *Blob             `json:"inlineData,omitempty"`
	FileData         *FileData         `json:"fileData,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// Blob is inline base64 media.
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// FileData references media by URI.
type FileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri"`
}

// FunctionCall is a model-issued function invocation replayed from history.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// FunctionResponse carries a tool result back to the model.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// GenerationConfig holds sampling and output controls.
type GenerationConfig struct {
	Temperature      *float64        `json:"temperature,omitempty"`
	MaxOutputTokens  *int            `json:"maxOutputTokens,omitempty"`
	TopP             *float64        `json:"topP,omitempty"`
	StopSequences    []string        `json:"stopSequences,omitempty"`
	PresencePenalty  *float64        `json:"presencePenalty,omitempty"`
	FrequencyPenalty *float64        `json:"frequencyPenalty,omitempty"`
	Seed             *int64          `json:"seed,omitempty"`
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ThinkingConfig   *ThinkingConfig `json:"thinkingConfig,omitempty"`
}

// ThinkingConfig controls the reasoning budget and whether thoughts are
// returned. A budget of -1 requests dynamic allocation.
type ThinkingConfig struct {
	ThinkingBudget  int  `json:"thinkingBudget"`
	IncludeThoughts bool `json:"includeThoughts"`
}

// HarmCategory names a safety filter category.
type HarmCategory string

const (
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// Block thresholds, from least to most restrictive.
const (
	ThresholdUnspecified         = "HARM_BLOCK_THRESHOLD_UNSPECIFIED"
	ThresholdOff                 = "OFF"
	ThresholdBlockNone           = "BLOCK_NONE"
	ThresholdBlockOnlyHigh       = "BLOCK_ONLY_HIGH"
	ThresholdBlockMediumAndAbove = "BLOCK_MEDIUM_AND_ABOVE"
	ThresholdBlockLowAndAbove    = "BLOCK_LOW_AND_ABOVE"
)

// Thresholds lists every accepted block threshold in order.
var Thresholds = []string{
	ThresholdUnspecified,
	ThresholdOff,
	ThresholdBlockNone,
	ThresholdBlockOnlyHigh,
	ThresholdBlockMediumAndAbove,
	ThresholdBlockLowAndAbove,
}

// SafetySetting overrides the backend default for one harm category.
type SafetySetting struct {
	Category  HarmCategory `json:"category"`
	Threshold string       `json:"threshold"`
}
