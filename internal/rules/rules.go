// Package rules adapts a message list to the constraints of a provider and
// records every normalization it performs.
package rules

import (
	"fmt"

	"llmpipe/internal/core"
)

// Config is the provider configuration the rules read from.
type Config struct {
	Model   string
	Options map[string]any
}

// AppliedRules is the working value threaded through the rules of one call.
// Rules only ever grows.
type AppliedRules struct {
	Rules    []core.Warning
	Messages []core.Message
	Config   Config
}

// Rule is a pure transformation of the working value.
type Rule func(AppliedRules) AppliedRules

// warn appends a warning unless the same warning is already recorded.
func (a AppliedRules) warn(rule core.RuleID, message string) AppliedRules {
	w := core.Warning{Rule: rule, Message: message}
	for _, existing := range a.Rules {
		if existing == w {
			return a
		}
	}
	rules := make([]core.Warning, len(a.Rules), len(a.Rules)+1)
	copy(rules, a.Rules)
	a.Rules = append(rules, w)
	return a
}

func identity(a AppliedRules) AppliedRules { return a }

// For returns the provider-specific rule for p. Providers without quirks map
// to the identity rule; an unknown provider is an error.
func For(p core.Provider) (Rule, error) {
	switch p {
	case core.ProviderAnthropic, core.ProviderAnthropicVertex:
		return systemFirst(core.RuleAnthropic, "Anthropic"), nil
	case core.ProviderGoogle, core.ProviderGoogleVertex:
		return systemFirst(core.RuleGoogle, "Google"), nil
	case core.ProviderOpenAI, core.ProviderAzure:
		return reasoningModelSystem, nil
	case core.ProviderPerplexity:
		return trailingUser, nil
	case core.ProviderGroq,
		core.ProviderMistral,
		core.ProviderCustom,
		core.ProviderXAI,
		core.ProviderAmazonBedrock,
		core.ProviderDeepSeek:
		return identity, nil
	default:
		return nil, fmt.Errorf("no rules defined for provider %q", string(p))
	}
}

// Apply runs the rules of provider over a fresh working value built from
// msgs and cfg. msgs is not modified.
func Apply(provider core.Provider, msgs []core.Message, cfg Config) (AppliedRules, error) {
	return Run(provider, AppliedRules{
		Messages: core.CloneMessages(msgs),
		Config:   cfg,
	})
}

// Run applies the provider rule and then the custom rule to in.
func Run(provider core.Provider, in AppliedRules) (AppliedRules, error) {
	rule, err := For(provider)
	if err != nil {
		return in, err
	}
	return custom(rule(in)), nil
}
