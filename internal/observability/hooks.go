// Package observability exposes completion metrics through hook functions
// so callers do not depend on the metrics backend.
package observability

import (
	"time"

	"llmpipe/internal/core"
)

// CompletionInfo describes one finished completion.
type CompletionInfo struct {
	Provider     string
	Model        string
	Streaming    bool
	FinishReason string
	Tokens       core.Tokens
	Duration     time.Duration
	// Err is set when the completion failed.
	Err error
}

// Hooks receives pipeline events. A nil field is skipped; the zero value is
// a no-op.
type Hooks struct {
	OnCompletion func(CompletionInfo)
	OnWarnings   func(provider string, warnings []core.Warning)
}

// Completion calls OnCompletion if set.
func (h Hooks) Completion(info CompletionInfo) {
	if h.OnCompletion != nil {
		h.OnCompletion(info)
	}
}

// Warnings calls OnWarnings if set and there is anything to report.
func (h Hooks) Warnings(provider string, warnings []core.Warning) {
	if h.OnWarnings != nil && len(warnings) > 0 {
		h.OnWarnings(provider, warnings)
	}
}
