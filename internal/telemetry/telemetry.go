// Package telemetry surrounds completion calls with observability spans.
package telemetry

import (
	"context"

	"llmpipe/internal/core"
)

// SpanOptions describes the completion a span is opened for.
type SpanOptions struct {
	Provider  core.Provider
	Model     string
	Streaming bool
	// Input is the request translated back into internal messages.
	Input []core.Message
	// Config is the raw call configuration as sent to the provider.
	Config map[string]any

	PromptUUID     string
	VersionUUID    string
	ExperimentUUID string
}

// EndOptions is the outcome recorded when a span closes successfully.
type EndOptions struct {
	Output       []core.Message
	Tokens       core.Tokens
	FinishReason string
}

// CompletionSpan is an open span. Exactly one of End or Fail is called.
type CompletionSpan interface {
	End(EndOptions)
	Fail(error)
}

// Tracer opens completion spans. The returned context carries the span so
// nested work is attributed to it.
type Tracer interface {
	StartCompletion(ctx context.Context, opts SpanOptions) (context.Context, CompletionSpan)
}

// ErrorReporter receives errors that are absorbed instead of returned.
type ErrorReporter interface {
	Report(ctx context.Context, err error)
}

// ErrorReporterFunc adapts a function to ErrorReporter.
type ErrorReporterFunc func(ctx context.Context, err error)

// Report calls f.
func (f ErrorReporterFunc) Report(ctx context.Context, err error) {
	f(ctx, err)
}
