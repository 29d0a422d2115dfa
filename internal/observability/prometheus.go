package observability

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"llmpipe/internal/core"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// PrometheusMetrics holds the completion collectors.
type PrometheusMetrics struct {
	completions *prometheus.CounterVec
	tokens      *prometheus.CounterVec
	warnings    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Completion calls by provider, model, status and finish reason.",
		}, []string{"provider", "model", "mode", "status", "finish_reason"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens reported by providers, by kind.",
		}, []string{"provider", "model", "kind"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalization_warnings_total",
			Help:      "Normalization warnings by provider and rule.",
		}, []string{"provider", "rule"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Time from call start to span close.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"provider", "model", "mode", "status"}),
	}

	var errs []error
	for _, c := range []prometheus.Collector{m.completions, m.tokens, m.warnings, m.duration} {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return m, nil
}

// Hooks returns hooks that record into m.
func (m *PrometheusMetrics) Hooks() Hooks {
	return Hooks{
		OnCompletion: m.observeCompletion,
		OnWarnings:   m.observeWarnings,
	}
}

func (m *PrometheusMetrics) observeCompletion(info CompletionInfo) {
	mode := "generate"
	if info.Streaming {
		mode = "stream"
	}
	status := statusSuccess
	if info.Err != nil {
		status = statusError
	}

	m.completions.WithLabelValues(info.Provider, info.Model, mode, status, info.FinishReason).Inc()
	m.duration.WithLabelValues(info.Provider, info.Model, mode, status).Observe(info.Duration.Seconds())

	for kind, v := range map[string]*int{
		"prompt":     info.Tokens.Prompt,
		"completion": info.Tokens.Completion,
		"cached":     info.Tokens.Cached,
		"reasoning":  info.Tokens.Reasoning,
	} {
		if v != nil && *v > 0 {
			m.tokens.WithLabelValues(info.Provider, info.Model, kind).Add(float64(*v))
		}
	}
}

func (m *PrometheusMetrics) observeWarnings(provider string, warnings []core.Warning) {
	for _, w := range warnings {
		m.warnings.WithLabelValues(provider, string(w.Rule)).Inc()
	}
}
