package core

// FinishReasonUnknown is reported when a completion ended without a finish
// signal.
const FinishReasonUnknown = "unknown"

// Tokens holds token usage. A nil field means the provider did not report it.
type Tokens struct {
	Prompt     *int `json:"prompt,omitempty"`
	Completion *int `json:"completion,omitempty"`
	Cached     *int `json:"cached,omitempty"`
	Reasoning  *int `json:"reasoning,omitempty"`
}

// CapturedFile is a file returned by the model. Data is kept as the model
// sent it: raw bytes, a base64 string or a URL.
type CapturedFile struct {
	MediaType       string          `json:"mediaType"`
	Data            any             `json:"data"`
	ProviderOptions ProviderOptions `json:"providerOptions,omitempty"`
}

// CapturedToolCall is a tool call returned by the model.
type CapturedToolCall struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Arguments is nil when the model sent none.
	Arguments       map[string]any  `json:"arguments,omitempty"`
	ProviderOptions ProviderOptions `json:"providerOptions,omitempty"`
}

// CapturedResult is the uniform record of one completion's output.
type CapturedResult struct {
	Text      string `json:"text"`
	Reasoning string `json:"reasoning"`
	// TextOptions and ReasoningOptions merge the provider options of the
	// parts folded into Text and Reasoning. Later parts win per key.
	TextOptions      ProviderOptions    `json:"textOptions,omitempty"`
	ReasoningOptions ProviderOptions    `json:"reasoningOptions,omitempty"`
	Files            []CapturedFile     `json:"files"`
	ToolCalls        []CapturedToolCall `json:"toolCalls"`
	FinishReason     string             `json:"finishReason"`
	Tokens           Tokens             `json:"tokens"`
}

// MergeProviderOptions merges src into dst namespace by namespace and
// returns dst. A nil dst is allocated only when src has entries.
func MergeProviderOptions(dst, src ProviderOptions) ProviderOptions {
	for ns, attrs := range src {
		if dst == nil {
			dst = ProviderOptions{}
		}
		merged := dst[ns]
		if merged == nil {
			merged = make(map[string]any, len(attrs))
		}
		for k, v := range attrs {
			merged[k] = v
		}
		dst[ns] = merged
	}
	return dst
}
