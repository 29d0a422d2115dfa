package completion

import "llmpipe/internal/core"

// Request is a single completion request.
type Request struct {
	Model           string
	Messages        []Message
	ProviderOptions core.ProviderOptions
	// Settings holds the remaining call configuration (temperature, max
	// tokens, tools...) as received.
	Settings map[string]any
}

// Usage is token usage as reported by the provider. nil means not reported.
type Usage struct {
	InputTokens       *int
	OutputTokens      *int
	TotalTokens       *int
	ReasoningTokens   *int
	CachedInputTokens *int
}

// ResponseMetadata describes the provider response.
type ResponseMetadata struct {
	ID      string
	ModelID string
	Headers map[string]string
}

// GenerateResult is the result of a blocking completion.
type GenerateResult struct {
	Content          []Part
	FinishReason     string
	Usage            Usage
	ProviderMetadata core.ProviderOptions
	Response         ResponseMetadata
	Warnings         []string
}

// StreamResult is the result of a streaming completion.
type StreamResult struct {
	Stream   ChunkStream
	Response ResponseMetadata
	Warnings []string
}

// Tokens maps provider usage onto captured token counts. Fields the provider
// left out stay nil.
func (u Usage) Tokens() core.Tokens {
	return core.Tokens{
		Prompt:     u.InputTokens,
		Completion: u.OutputTokens,
		Cached:     u.CachedInputTokens,
		Reasoning:  u.ReasoningTokens,
	}
}
