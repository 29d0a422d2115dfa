package telemetry

import (
	"context"
	"fmt"
	"maps"

	"llmpipe/internal/completion"
	"llmpipe/internal/core"
	"llmpipe/internal/providermeta"
	"llmpipe/internal/streamcapture"
	"llmpipe/internal/translate"
)

// Options configures the middleware.
type Options struct {
	Provider core.Provider
	Tracer   Tracer
	// Errors receives translation failures. nil drops them.
	Errors ErrorReporter
	// Tools is the resolved-tools table used to annotate tool calls.
	Tools core.ResolvedTools

	PromptUUID     string
	VersionUUID    string
	ExperimentUUID string
}

// Model wraps a completion.Model and records one span per call.
// It implements completion.Model.
type Model struct {
	inner completion.Model
	opts  Options
}

// Wrap returns model decorated with span recording.
func Wrap(model completion.Model, opts Options) *Model {
	return &Model{inner: model, opts: opts}
}

// Generate records a span around a blocking call. The inner result is
// returned untouched; an inner error fails the span and is returned as is.
func (m *Model) Generate(ctx context.Context, req *completion.Request) (*completion.GenerateResult, error) {
	spanCtx, span := m.start(ctx, req, false)

	result, err := m.inner.Generate(spanCtx, req)
	if err != nil {
		span.Fail(err)
		return nil, err
	}

	span.End(m.endOptions(translate.CaptureOutput(result)))
	return result, nil
}

// Stream records a span around a streaming call. The span closes when the
// returned stream reaches its end. A nil inner result closes the span with an
// empty capture and is passed through.
func (m *Model) Stream(ctx context.Context, req *completion.Request) (*completion.StreamResult, error) {
	spanCtx, span := m.start(ctx, req, true)

	result, err := m.inner.Stream(spanCtx, req)
	if err != nil {
		span.Fail(err)
		return nil, err
	}

	if result == nil {
		span.End(m.endOptions(translate.CaptureOutput(nil)))
		return nil, nil
	}

	wrapped := *result
	wrapped.Stream = streamcapture.Wrap(result.Stream,
		func(captured core.CapturedResult) {
			span.End(m.endOptions(captured))
		},
		streamcapture.WithErrorHandler(span.Fail),
	)
	return &wrapped, nil
}

func (m *Model) start(ctx context.Context, req *completion.Request, streaming bool) (context.Context, CompletionSpan) {
	return m.opts.Tracer.StartCompletion(ctx, SpanOptions{
		Provider:       m.opts.Provider,
		Model:          req.Model,
		Streaming:      streaming,
		Input:          m.input(ctx, req.Messages),
		Config:         callConfig(req),
		PromptUUID:     m.opts.PromptUUID,
		VersionUUID:    m.opts.VersionUUID,
		ExperimentUUID: m.opts.ExperimentUUID,
	})
}

// input translates the request messages back into the internal model. A
// failure is reported and yields an empty list.
func (m *Model) input(ctx context.Context, msgs []completion.Message) []core.Message {
	internal, err := translate.FromExternal(msgs)
	if err != nil {
		if m.opts.Errors != nil {
			m.opts.Errors.Report(ctx, fmt.Errorf("failed to translate span input: %w", err))
		}
		return []core.Message{}
	}
	return providermeta.Unwrap(internal)
}

func (m *Model) endOptions(captured core.CapturedResult) EndOptions {
	return EndOptions{
		Output:       AttachToolSources(providermeta.Unwrap(translate.OutputMessages(captured)), m.opts.Tools),
		Tokens:       captured.Tokens,
		FinishReason: captured.FinishReason,
	}
}

func callConfig(req *completion.Request) map[string]any {
	cfg := make(map[string]any, len(req.Settings)+2)
	maps.Copy(cfg, req.Settings)
	cfg["model"] = req.Model
	if len(req.ProviderOptions) > 0 {
		cfg["providerOptions"] = req.ProviderOptions.Clone()
	}
	return cfg
}
