// Package main is a dry-run entry point: it normalizes a message list for a
// provider and prints the request the model host would receive.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"llmpipe/config"
	"llmpipe/internal/app"
	"llmpipe/internal/completion"
	"llmpipe/internal/core"
	"llmpipe/internal/logging"
	"llmpipe/internal/pipeline"
	"llmpipe/internal/providermeta"
	"llmpipe/internal/version"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	configPath := flag.String("config", config.DefaultPath, "Path to the YAML config file")
	provider := flag.String("provider", "", "Provider the messages are normalized for")
	model := flag.String("model", "", "Model id, defaults to the configured provider model")
	messagesPath := flag.String("messages", "-", "JSON message array file, - for stdin")
	printMetrics := flag.Bool("print-metrics", false, "Print collected metrics to stderr on exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if err := run(*configPath, *provider, *model, *messagesPath, *printMetrics); err != nil {
		slog.Error("llmpipe failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, providerName, model, messagesPath string, printMetrics bool) error {
	result, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := result.Config

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger)
	logger.Debug("starting llmpipe", "version", version.Version, "commit", version.Commit, "build_date", version.Date)

	provider, err := core.ParseProvider(providerName)
	if err != nil {
		return err
	}

	msgs, err := readMessages(messagesPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	host := &recordingHost{}
	application, err := app.New(ctx, app.Config{
		AppConfig:  result,
		Model:      host,
		Logger:     logger,
		Registerer: reg,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	resp, err := application.Client().Generate(core.WithRequestID(ctx, "dry-run"), pipeline.Call{
		Provider: provider,
		Model:    model,
		Messages: msgs,
	})
	if err != nil {
		return err
	}

	if err := writeReport(os.Stdout, host.request, resp); err != nil {
		return err
	}
	if printMetrics {
		return writeMetrics(os.Stderr, reg)
	}
	return nil
}

func readMessages(path string) ([]core.Message, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	msgs, err := providermeta.DecodeMessages(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return msgs, nil
}

// recordingHost stands in for the model host: it keeps the request and
// answers with an empty completion.
type recordingHost struct {
	request *completion.Request
}

func (h *recordingHost) Generate(_ context.Context, req *completion.Request) (*completion.GenerateResult, error) {
	h.request = req
	return &completion.GenerateResult{FinishReason: "stop"}, nil
}

func (h *recordingHost) Stream(_ context.Context, req *completion.Request) (*completion.StreamResult, error) {
	h.request = req
	return &completion.StreamResult{Stream: completion.NewSliceStream(completion.FinishChunk{FinishReason: "stop"})}, nil
}

type report struct {
	Model            string               `json:"model"`
	ProviderOptions  core.ProviderOptions `json:"providerOptions,omitempty"`
	Messages         []reportMessage      `json:"messages"`
	Warnings         []core.Warning       `json:"warnings"`
	ToolCallWarnings []core.Warning       `json:"toolCallWarnings,omitempty"`
	Settings         map[string]any       `json:"settings,omitempty"`
}

type reportMessage struct {
	Role            core.Role            `json:"role"`
	Content         any                  `json:"content"`
	ProviderOptions core.ProviderOptions `json:"providerOptions,omitempty"`
}

type reportPart struct {
	Type string          `json:"type"`
	Part completion.Part `json:"part"`
}

func writeReport(w io.Writer, req *completion.Request, resp *pipeline.Response) error {
	r := report{
		Warnings:         resp.Warnings,
		ToolCallWarnings: resp.ToolCallWarnings,
	}
	if r.Warnings == nil {
		r.Warnings = []core.Warning{}
	}
	if req != nil {
		r.Model = req.Model
		r.ProviderOptions = req.ProviderOptions
		r.Settings = req.Settings
		r.Messages = make([]reportMessage, 0, len(req.Messages))
		for _, m := range req.Messages {
			r.Messages = append(r.Messages, reportMessage{
				Role:            m.Role,
				Content:         messageContent(m),
				ProviderOptions: m.ProviderOptions,
			})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func messageContent(m completion.Message) any {
	switch {
	case m.Role == core.RoleSystem:
		return m.System
	case m.IsText:
		return m.Text
	}
	parts := make([]reportPart, 0, len(m.Parts))
	for _, p := range m.Parts {
		parts = append(parts, reportPart{Type: p.Type(), Part: p})
	}
	return parts
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
