// Package streamcapture observes a completion chunk stream without altering it
// and produces one captured result when the stream ends.
package streamcapture

import (
	"llmpipe/internal/completion"
	"llmpipe/internal/core"
)

// Accumulator folds stream chunks into capture state. The zero value is
// ready to use.
type Accumulator struct {
	text      []byte
	reasoning []byte
	files     []core.CapturedFile
	toolCalls []core.CapturedToolCall

	finished     bool
	finishReason string
	tokens       core.Tokens
}

// Observe records c. Chunk kinds that carry no output are ignored.
func (a *Accumulator) Observe(c completion.Chunk) {
	switch c := c.(type) {
	case completion.TextDelta:
		a.text = append(a.text, c.Delta...)
	case completion.ReasoningDelta:
		a.reasoning = append(a.reasoning, c.Delta...)
	case completion.FileChunk:
		a.files = append(a.files, core.CapturedFile{MediaType: c.MediaType, Data: c.Data})
	case completion.ToolCallChunk:
		a.toolCalls = append(a.toolCalls, core.CapturedToolCall{
			ID:        c.ToolCallID,
			Name:      c.ToolName,
			Arguments: c.Input,
		})
	case completion.FinishChunk:
		a.finished = true
		a.finishReason = c.FinishReason
		a.tokens = c.Usage.Tokens()
	}
}

// Finish returns the captured result for the chunks observed so far.
// Without a finish chunk, or when it names no reason, the finish reason is
// core.FinishReasonUnknown.
func Finish(a Accumulator) core.CapturedResult {
	reason := core.FinishReasonUnknown
	if a.finished && a.finishReason != "" {
		reason = a.finishReason
	}
	return core.CapturedResult{
		Text:         string(a.text),
		Reasoning:    string(a.reasoning),
		Files:        a.files,
		ToolCalls:    a.toolCalls,
		FinishReason: reason,
		Tokens:       a.tokens,
	}
}
