package core

// RuleID identifies the rule that produced a warning.
type RuleID string

const (
	RuleAnthropic  RuleID = "anthropic"
	RuleGoogle     RuleID = "google"
	RuleOpenAI     RuleID = "openai"
	RulePerplexity RuleID = "perplexity"
	RuleCustom     RuleID = "custom"
	RuleToolCalls  RuleID = "tool_calls"
)

// Warning is an informational note about a normalization that was applied.
type Warning struct {
	Rule    RuleID `json:"rule"`
	Message string `json:"message"`
}
