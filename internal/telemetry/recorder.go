package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"llmpipe/internal/core"
	"llmpipe/internal/observability"
)

type spanIDKey struct{}

// SpanIDFromContext returns the id of the span active in ctx, or "".
func SpanIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(spanIDKey{}).(string); ok {
		return id
	}
	return ""
}

// RecorderConfig configures a Recorder.
type RecorderConfig struct {
	Logger *slog.Logger
	Hooks  observability.Hooks
	// LogSpans writes one log line per closed span.
	LogSpans bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// Recorder is a Tracer that logs spans and reports them to metrics hooks.
type Recorder struct {
	logger   *slog.Logger
	hooks    observability.Hooks
	logSpans bool
	now      func() time.Time
}

// NewRecorder creates a Recorder.
func NewRecorder(cfg RecorderConfig) *Recorder {
	r := &Recorder{
		logger:   cfg.Logger,
		hooks:    cfg.Hooks,
		logSpans: cfg.LogSpans,
		now:      cfg.Now,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// StartCompletion opens a span. A span already active in ctx becomes its
// parent.
func (r *Recorder) StartCompletion(ctx context.Context, opts SpanOptions) (context.Context, CompletionSpan) {
	s := &recordedSpan{
		recorder:  r,
		id:        uuid.NewString(),
		parentID:  SpanIDFromContext(ctx),
		requestID: core.GetRequestID(ctx),
		opts:      opts,
		digest:    InputDigest(opts.Input),
		started:   r.now(),
	}
	return context.WithValue(ctx, spanIDKey{}, s.id), s
}

// InputDigest returns a stable hash of a message list, used to group spans
// with identical input.
func InputDigest(msgs []core.Message) string {
	data, err := json.Marshal(msgs)
	if err != nil {
		return ""
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

type recordedSpan struct {
	recorder  *Recorder
	id        string
	parentID  string
	requestID string
	opts      SpanOptions
	digest    string
	started   time.Time
	once      sync.Once
}

func (s *recordedSpan) End(end EndOptions) {
	s.once.Do(func() {
		d := s.recorder.now().Sub(s.started)
		s.recorder.hooks.Completion(s.info(d, end.FinishReason, end.Tokens, nil))
		if !s.recorder.logSpans {
			return
		}
		attrs := append(s.attrs(d),
			slog.String("finish_reason", end.FinishReason),
			slog.Int("output_messages", len(end.Output)),
		)
		attrs = append(attrs, tokenAttrs(end.Tokens)...)
		s.recorder.logger.LogAttrs(context.Background(), slog.LevelInfo, "completion span ended", attrs...)
	})
}

func (s *recordedSpan) Fail(err error) {
	s.once.Do(func() {
		d := s.recorder.now().Sub(s.started)
		s.recorder.hooks.Completion(s.info(d, "", core.Tokens{}, err))
		if !s.recorder.logSpans {
			return
		}
		attrs := append(s.attrs(d), slog.String("error", err.Error()))
		s.recorder.logger.LogAttrs(context.Background(), slog.LevelError, "completion span failed", attrs...)
	})
}

func (s *recordedSpan) info(d time.Duration, finishReason string, tokens core.Tokens, err error) observability.CompletionInfo {
	return observability.CompletionInfo{
		Provider:     string(s.opts.Provider),
		Model:        s.opts.Model,
		Streaming:    s.opts.Streaming,
		FinishReason: finishReason,
		Tokens:       tokens,
		Duration:     d,
		Err:          err,
	}
}

func (s *recordedSpan) attrs(d time.Duration) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("span_id", s.id),
		slog.String("provider", string(s.opts.Provider)),
		slog.String("model", s.opts.Model),
		slog.String("input_digest", s.digest),
		slog.Duration("duration", d),
	}
	if s.parentID != "" {
		attrs = append(attrs, slog.String("parent_span_id", s.parentID))
	}
	if s.requestID != "" {
		attrs = append(attrs, slog.String("request_id", s.requestID))
	}
	if s.opts.PromptUUID != "" {
		attrs = append(attrs, slog.String("prompt_uuid", s.opts.PromptUUID))
	}
	if s.opts.VersionUUID != "" {
		attrs = append(attrs, slog.String("version_uuid", s.opts.VersionUUID))
	}
	if s.opts.ExperimentUUID != "" {
		attrs = append(attrs, slog.String("experiment_uuid", s.opts.ExperimentUUID))
	}
	return attrs
}

func tokenAttrs(t core.Tokens) []slog.Attr {
	var attrs []slog.Attr
	for _, f := range []struct {
		key string
		v   *int
	}{
		{"prompt_tokens", t.Prompt},
		{"completion_tokens", t.Completion},
		{"cached_tokens", t.Cached},
		{"reasoning_tokens", t.Reasoning},
	} {
		if f.v != nil {
			attrs = append(attrs, slog.Int(f.key, *f.v))
		}
	}
	return attrs
}
