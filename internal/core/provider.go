package core

import "fmt"

// Provider identifies an LLM vendor or endpoint family.
type Provider string

const (
	ProviderOpenAI          Provider = "openai"
	ProviderAnthropic       Provider = "anthropic"
	ProviderGroq            Provider = "groq"
	ProviderMistral         Provider = "mistral"
	ProviderAzure           Provider = "azure"
	ProviderGoogle          Provider = "google"
	ProviderGoogleVertex    Provider = "google_vertex"
	ProviderAnthropicVertex Provider = "anthropic_vertex"
	ProviderCustom          Provider = "custom"
	ProviderXAI             Provider = "xai"
	ProviderAmazonBedrock   Provider = "amazon_bedrock"
	ProviderDeepSeek        Provider = "deepseek"
	ProviderPerplexity      Provider = "perplexity"
)

// Providers returns every supported provider in declaration order.
func Providers() []Provider {
	return []Provider{
		ProviderOpenAI,
		ProviderAnthropic,
		ProviderGroq,
		ProviderMistral,
		ProviderAzure,
		ProviderGoogle,
		ProviderGoogleVertex,
		ProviderAnthropicVertex,
		ProviderCustom,
		ProviderXAI,
		ProviderAmazonBedrock,
		ProviderDeepSeek,
		ProviderPerplexity,
	}
}

// ParseProvider validates a provider identifier.
func ParseProvider(s string) (Provider, error) {
	for _, p := range Providers() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown provider: %q", s)
}

// Namespace returns the providerOptions namespace used for p. Gateway
// variants share the namespace of the vendor they front.
func (p Provider) Namespace() string {
	switch p {
	case ProviderAnthropicVertex:
		return string(ProviderAnthropic)
	case ProviderGoogleVertex:
		return string(ProviderGoogle)
	default:
		return string(p)
	}
}
