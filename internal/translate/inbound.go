package translate

import (
	"strings"

	"llmpipe/internal/completion"
	"llmpipe/internal/core"
)

// FromExternal translates external messages back into the internal model.
// Provider options are carried over untouched; the reserved namespace is
// left for providermeta.Unwrap.
func FromExternal(msgs []completion.Message) ([]core.Message, error) {
	out := make([]core.Message, 0, len(msgs))
	for i, m := range msgs {
		msg := core.Message{
			Role:            m.Role,
			ProviderOptions: m.ProviderOptions.Clone(),
		}
		switch m.Role {
		case core.RoleSystem:
			msg.Content = core.TextContent(m.System)
		case core.RoleUser:
			if m.IsText {
				msg.Content = core.TextContent(m.Text)
			} else {
				msg.Content = core.PartsContent(partsFromExternal(m.Parts)...)
			}
		case core.RoleAssistant, core.RoleTool:
			msg.Content = core.PartsContent(partsFromExternal(m.Parts)...)
		default:
			return nil, &core.UnknownRoleError{Role: m.Role, Index: i}
		}
		out = append(out, msg)
	}
	return out, nil
}

func partsFromExternal(parts []completion.Part) []core.Part {
	out := make([]core.Part, 0, len(parts))
	for _, p := range parts {
		if ip := partFromExternal(p); ip != nil {
			out = append(out, ip)
		}
	}
	return out
}

func partFromExternal(p completion.Part) core.Part {
	switch p := p.(type) {
	case completion.TextPart:
		return core.TextPart{Text: p.Text, PartOptions: optionsFrom(p.ProviderOptions)}
	case completion.ImagePart:
		return core.ImagePart{Image: p.Image, MimeType: p.MediaType, PartOptions: optionsFrom(p.ProviderOptions)}
	case completion.FilePart:
		return core.FilePart{File: p.Data, MimeType: p.MediaType, PartOptions: optionsFrom(p.ProviderOptions)}
	case completion.ReasoningPart:
		return core.ReasoningPart{Text: p.Text, PartOptions: optionsFrom(p.ProviderOptions)}
	case completion.RedactedReasoningPart:
		return core.RedactedReasoningPart{Data: p.Data, PartOptions: optionsFrom(p.ProviderOptions)}
	case completion.ToolCallPart:
		return core.ToolCallPart{
			ToolCallID:  p.ToolCallID,
			ToolName:    p.ToolName,
			Args:        p.Input,
			PartOptions: optionsFrom(p.ProviderOptions),
		}
	case completion.ToolResultPart:
		result, isError := unshapeOutput(p.Output)
		return core.ToolResultPart{
			ToolCallID:  p.ToolCallID,
			ToolName:    p.ToolName,
			Result:      result,
			IsError:     isError,
			PartOptions: optionsFrom(p.ProviderOptions),
		}
	default:
		return nil
	}
}

func optionsFrom(opts core.ProviderOptions) core.PartOptions {
	return core.PartOptions{ProviderOptions: opts.Clone()}
}

func unshapeOutput(o completion.ToolResultOutput) (any, bool) {
	switch o.Type {
	case completion.OutputTypeText:
		return o.Text, false
	case completion.OutputTypeErrorText:
		return o.Text, true
	case completion.OutputTypeContent:
		items := make([]any, 0, len(o.Content))
		for _, c := range o.Content {
			if c.Type == "media" {
				items = append(items, map[string]any{"type": "media", "data": c.Data, "mediaType": c.MediaType})
				continue
			}
			items = append(items, map[string]any{"type": "text", "text": c.Text})
		}
		return items, false
	case completion.OutputTypeErrorJSON:
		return o.Value, true
	default:
		return o.Value, false
	}
}

// CaptureOutput scans the content of a blocking result once and collects
// text, reasoning, files and tool calls. File payloads are kept verbatim and
// token counts are copied as reported.
func CaptureOutput(result *completion.GenerateResult) core.CapturedResult {
	captured := core.CapturedResult{FinishReason: core.FinishReasonUnknown}
	if result == nil {
		return captured
	}
	if result.FinishReason != "" {
		captured.FinishReason = result.FinishReason
	}
	captured.Tokens = result.Usage.Tokens()

	var text, reasoning strings.Builder
	for _, p := range result.Content {
		switch p := p.(type) {
		case completion.TextPart:
			text.WriteString(p.Text)
			captured.TextOptions = core.MergeProviderOptions(captured.TextOptions, p.ProviderOptions)
		case completion.ReasoningPart:
			reasoning.WriteString(p.Text)
			captured.ReasoningOptions = core.MergeProviderOptions(captured.ReasoningOptions, p.ProviderOptions)
		case completion.FilePart:
			captured.Files = append(captured.Files, core.CapturedFile{
				MediaType:       p.MediaType,
				Data:            p.Data,
				ProviderOptions: p.ProviderOptions.Clone(),
			})
		case completion.ToolCallPart:
			captured.ToolCalls = append(captured.ToolCalls, core.CapturedToolCall{
				ID:              p.ToolCallID,
				Name:            p.ToolName,
				Arguments:       p.Input,
				ProviderOptions: p.ProviderOptions.Clone(),
			})
		}
	}
	captured.Text = text.String()
	captured.Reasoning = reasoning.String()
	return captured
}

// OutputMessages builds the assistant message recorded as span output. Part
// provider options are carried over so that the side-channel bag can be
// restored with providermeta.Unwrap.
func OutputMessages(captured core.CapturedResult) []core.Message {
	parts := []core.Part{}
	if captured.Reasoning != "" {
		parts = append(parts, core.ReasoningPart{
			Text:        captured.Reasoning,
			PartOptions: core.PartOptions{ProviderOptions: captured.ReasoningOptions.Clone()},
		})
	}
	if captured.Text != "" {
		parts = append(parts, core.TextPart{
			Text:        captured.Text,
			PartOptions: core.PartOptions{ProviderOptions: captured.TextOptions.Clone()},
		})
	}
	for _, f := range captured.Files {
		parts = append(parts, core.FilePart{
			File:        f.Data,
			MimeType:    f.MediaType,
			PartOptions: core.PartOptions{ProviderOptions: f.ProviderOptions.Clone()},
		})
	}
	toolCalls := make([]core.ToolCall, 0, len(captured.ToolCalls))
	for _, tc := range captured.ToolCalls {
		parts = append(parts, core.ToolCallPart{
			ToolCallID:  tc.ID,
			ToolName:    tc.Name,
			Args:        tc.Arguments,
			PartOptions: core.PartOptions{ProviderOptions: tc.ProviderOptions.Clone()},
		})
		toolCalls = append(toolCalls, core.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
	}

	msg := core.Message{Role: core.RoleAssistant, Content: core.PartsContent(parts...)}
	if len(toolCalls) > 0 {
		msg.ToolCalls = toolCalls
	}
	return []core.Message{msg}
}
