// Package pipeline runs one completion call end to end: provider attribute
// extraction, provider rules, side-channel wrapping, translation and the
// telemetry-wrapped model call.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"llmpipe/config"
	"llmpipe/internal/completion"
	"llmpipe/internal/core"
	"llmpipe/internal/observability"
	"llmpipe/internal/providermeta"
	"llmpipe/internal/rules"
	"llmpipe/internal/telemetry"
	"llmpipe/internal/toolsource"
	"llmpipe/internal/translate"
)

// Options configures a Client. Every field is optional.
type Options struct {
	// Tracer records a span per call. nil disables spans.
	Tracer telemetry.Tracer
	Errors telemetry.ErrorReporter
	// Tools supplies the resolved-tools table for provenance annotation.
	Tools     toolsource.Store
	Hooks     observability.Hooks
	Logger    *slog.Logger
	Providers map[string]config.ProviderConfig
}

// Client sends calls to a model through the normalization pipeline.
type Client struct {
	model     completion.Model
	tracer    telemetry.Tracer
	errors    telemetry.ErrorReporter
	tools     toolsource.Store
	hooks     observability.Hooks
	logger    *slog.Logger
	providers map[string]config.ProviderConfig
}

// New creates a Client calling model.
func New(model completion.Model, opts Options) *Client {
	c := &Client{
		model:     model,
		tracer:    opts.Tracer,
		errors:    opts.Errors,
		tools:     opts.Tools,
		hooks:     opts.Hooks,
		logger:    opts.Logger,
		providers: opts.Providers,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Call is one completion request in the internal format.
type Call struct {
	Provider core.Provider
	// Model defaults to the configured model of the provider.
	Model    string
	Messages []core.Message
	// Options are provider settings merged over the configured ones and sent
	// under the provider namespace.
	Options map[string]any
	// Settings are passed through to the model untouched.
	Settings map[string]any

	PromptUUID     string
	VersionUUID    string
	ExperimentUUID string
}

// Response carries a blocking result and the normalizations applied to get
// there.
type Response struct {
	Result *completion.GenerateResult
	// Warnings are the rule engine warnings.
	Warnings []core.Warning
	// ToolCallWarnings record tool calls appended during translation.
	ToolCallWarnings []core.Warning
}

// StreamResponse is the streaming counterpart of Response.
type StreamResponse struct {
	Result           *completion.StreamResult
	Warnings         []core.Warning
	ToolCallWarnings []core.Warning
}

type prepared struct {
	req      *completion.Request
	model    completion.Model
	applied  rules.AppliedRules
	outbound translate.Outbound
}

// Generate runs a blocking completion.
func (c *Client) Generate(ctx context.Context, call Call) (*Response, error) {
	p, err := c.prepare(ctx, call)
	if err != nil {
		return nil, err
	}
	result, err := p.model.Generate(ctx, p.req)
	if err != nil {
		return nil, err
	}
	return &Response{
		Result:           result,
		Warnings:         p.applied.Rules,
		ToolCallWarnings: p.outbound.Warnings,
	}, nil
}

// Stream runs a streaming completion. The caller must drain or close the
// returned stream.
func (c *Client) Stream(ctx context.Context, call Call) (*StreamResponse, error) {
	p, err := c.prepare(ctx, call)
	if err != nil {
		return nil, err
	}
	result, err := p.model.Stream(ctx, p.req)
	if err != nil {
		return nil, err
	}
	return &StreamResponse{
		Result:           result,
		Warnings:         p.applied.Rules,
		ToolCallWarnings: p.outbound.Warnings,
	}, nil
}

func (c *Client) prepare(ctx context.Context, call Call) (*prepared, error) {
	provider := call.Provider
	providerCfg := c.providers[string(provider)]

	model := call.Model
	if model == "" {
		model = providerCfg.Model
	}
	options := mergeOptions(providerCfg.Options, call.Options)

	msgs := providermeta.ExtractAll(call.Messages, provider)
	applied, err := rules.Apply(provider, msgs, rules.Config{Model: model, Options: options})
	if err != nil {
		return nil, err
	}
	outbound, err := translate.ToExternal(providermeta.Wrap(applied.Messages))
	if err != nil {
		return nil, fmt.Errorf("failed to translate messages: %w", err)
	}

	c.logWarnings(ctx, provider, model, applied.Rules)
	c.logWarnings(ctx, provider, model, outbound.Warnings)
	c.hooks.Warnings(string(provider), applied.Rules)
	c.hooks.Warnings(string(provider), outbound.Warnings)

	req := &completion.Request{
		Model:    model,
		Messages: outbound.Messages,
		Settings: call.Settings,
	}
	if len(options) > 0 {
		req.ProviderOptions = core.ProviderOptions{provider.Namespace(): options}
	}

	return &prepared{
		req:      req,
		model:    c.wrapModel(ctx, call),
		applied:  applied,
		outbound: outbound,
	}, nil
}

func (c *Client) wrapModel(ctx context.Context, call Call) completion.Model {
	if c.tracer == nil {
		return c.model
	}
	return telemetry.Wrap(c.model, telemetry.Options{
		Provider:       call.Provider,
		Tracer:         c.tracer,
		Errors:         c.errors,
		Tools:          c.resolvedTools(ctx),
		PromptUUID:     call.PromptUUID,
		VersionUUID:    call.VersionUUID,
		ExperimentUUID: call.ExperimentUUID,
	})
}

// resolvedTools loads the provenance table. A failing store only costs the
// annotation.
func (c *Client) resolvedTools(ctx context.Context) core.ResolvedTools {
	if c.tools == nil {
		return nil
	}
	tools, err := toolsource.Lookup(ctx, c.tools)
	if err != nil {
		err = fmt.Errorf("failed to load tool sources: %w", err)
		if c.errors != nil {
			c.errors.Report(ctx, err)
		} else {
			c.logger.WarnContext(ctx, "tool sources unavailable", "error", err)
		}
		return nil
	}
	return tools
}

func (c *Client) logWarnings(ctx context.Context, provider core.Provider, model string, warnings []core.Warning) {
	for _, w := range warnings {
		c.logger.WarnContext(ctx, w.Message,
			"provider", string(provider),
			"model", model,
			"rule", string(w.Rule),
		)
	}
}

func mergeOptions(base, override map[string]any) map[string]any {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]any, len(base)+len(override))
	maps.Copy(out, base)
	maps.Copy(out, override)
	return out
}
