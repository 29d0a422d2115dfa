// Package translate converts between the internal message model and the
// external completion format, in both directions.
package translate

import (
	"fmt"
	"strings"

	"llmpipe/internal/completion"
	"llmpipe/internal/core"
)

// Outbound is a translated request message list together with the warnings
// produced while reconciling tool calls. The warnings are for telemetry only
// and never part of the rule engine's output.
type Outbound struct {
	Messages []completion.Message
	Warnings []core.Warning
}

// ToExternal translates internal messages into the external format.
//
// Assistant messages without content and without tool calls are dropped;
// messages of every other role are always kept. A role outside the fixed set
// fails the whole translation with *core.UnknownRoleError.
func ToExternal(msgs []core.Message) (Outbound, error) {
	out := Outbound{Messages: make([]completion.Message, 0, len(msgs))}

	for i, m := range msgs {
		switch m.Role {
		case core.RoleSystem:
			out.Messages = append(out.Messages, systemToExternal(m))
		case core.RoleUser:
			out.Messages = append(out.Messages, userToExternal(m))
		case core.RoleAssistant:
			if m.Content.IsEmpty() && len(m.ToolCalls) == 0 {
				continue
			}
			msg, warnings := assistantToExternal(m)
			out.Messages = append(out.Messages, msg)
			out.Warnings = append(out.Warnings, warnings...)
		case core.RoleTool:
			out.Messages = append(out.Messages, toolToExternal(m))
		default:
			return Outbound{}, &core.UnknownRoleError{Role: m.Role, Index: i}
		}
	}
	return out, nil
}

func systemToExternal(m core.Message) completion.Message {
	var texts []string
	for _, p := range m.Content.AsParts() {
		if tp, ok := p.(core.TextPart); ok {
			texts = append(texts, tp.Text)
		}
	}
	return completion.Message{
		Role:            core.RoleSystem,
		System:          strings.Join(texts, "\n"),
		ProviderOptions: m.ProviderOptions.Clone(),
	}
}

func userToExternal(m core.Message) completion.Message {
	msg := completion.Message{
		Role:            core.RoleUser,
		ProviderOptions: m.ProviderOptions.Clone(),
	}
	if m.Content.IsText {
		msg.Text, msg.IsText = m.Content.Text, true
		return msg
	}
	// A lone text part collapses to a bare string unless it carries options
	// the string form could not hold.
	if len(m.Content.Parts) == 1 {
		if tp, ok := m.Content.Parts[0].(core.TextPart); ok && len(tp.ProviderOptions) == 0 {
			msg.Text, msg.IsText = tp.Text, true
			return msg
		}
	}
	msg.Parts = partsToExternal(m.Content.Parts)
	return msg
}

func assistantToExternal(m core.Message) (completion.Message, []core.Warning) {
	msg := completion.Message{
		Role:            core.RoleAssistant,
		Parts:           partsToExternal(m.Content.AsParts()),
		ProviderOptions: m.ProviderOptions.Clone(),
	}

	mirrored := make(map[string]bool)
	for _, p := range msg.Parts {
		if tc, ok := p.(completion.ToolCallPart); ok {
			mirrored[tc.ToolCallID] = true
		}
	}

	var warnings []core.Warning
	for _, call := range m.ToolCalls {
		if mirrored[call.ID] {
			continue
		}
		mirrored[call.ID] = true
		msg.Parts = append(msg.Parts, completion.ToolCallPart{
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Input:      call.Arguments,
		})
		warnings = append(warnings, core.Warning{
			Rule: core.RuleToolCalls,
			Message: fmt.Sprintf(
				"Tool call %s (%s) was missing from the assistant content and has been appended.",
				call.ID, call.Name),
		})
	}
	return msg, warnings
}

// toolToExternal keeps only the tool results of a tool message.
func toolToExternal(m core.Message) completion.Message {
	msg := completion.Message{
		Role:            core.RoleTool,
		Parts:           []completion.Part{},
		ProviderOptions: m.ProviderOptions.Clone(),
	}
	if m.Content.IsText {
		return msg
	}
	for _, p := range m.Content.Parts {
		if tr, ok := p.(core.ToolResultPart); ok {
			msg.Parts = append(msg.Parts, partToExternal(tr))
		}
	}
	return msg
}

func partsToExternal(parts []core.Part) []completion.Part {
	out := make([]completion.Part, 0, len(parts))
	for _, p := range parts {
		if ep := partToExternal(p); ep != nil {
			out = append(out, ep)
		}
	}
	return out
}

func partToExternal(p core.Part) completion.Part {
	opts := p.Options().ProviderOptions.Clone()
	switch p := p.(type) {
	case core.TextPart:
		return completion.TextPart{Text: p.Text, ProviderOptions: opts}
	case core.ImagePart:
		return completion.ImagePart{Image: p.Image, MediaType: p.MimeType, ProviderOptions: opts}
	case core.FilePart:
		return completion.FilePart{Data: p.File, MediaType: p.MimeType, ProviderOptions: opts}
	case core.ReasoningPart:
		return completion.ReasoningPart{Text: p.Text, ProviderOptions: opts}
	case core.RedactedReasoningPart:
		return completion.RedactedReasoningPart{Data: p.Data, ProviderOptions: opts}
	case core.ToolCallPart:
		return completion.ToolCallPart{
			ToolCallID:      p.ToolCallID,
			ToolName:        p.ToolName,
			Input:           p.Args,
			ProviderOptions: opts,
		}
	case core.ToolResultPart:
		return completion.ToolResultPart{
			ToolCallID:      p.ToolCallID,
			ToolName:        p.ToolName,
			Output:          shapeOutput(p.Result, p.IsError),
			ProviderOptions: opts,
		}
	default:
		return nil
	}
}

// shapeOutput picks the output variant of a tool result from its runtime
// shape.
func shapeOutput(result any, isError bool) completion.ToolResultOutput {
	if s, ok := result.(string); ok {
		if isError {
			return completion.ToolResultOutput{Type: completion.OutputTypeErrorText, Text: s}
		}
		return completion.ToolResultOutput{Type: completion.OutputTypeText, Text: s}
	}
	if content, ok := contentOutput(result); ok {
		return completion.ToolResultOutput{Type: completion.OutputTypeContent, Content: content}
	}
	if isError {
		return completion.ToolResultOutput{Type: completion.OutputTypeErrorJSON, Value: result}
	}
	return completion.ToolResultOutput{Type: completion.OutputTypeJSON, Value: result}
}

// contentOutput accepts a non-empty array whose entries are all strings,
// text objects or media objects.
func contentOutput(result any) ([]completion.OutputContent, bool) {
	items, ok := result.([]any)
	if !ok || len(items) == 0 {
		return nil, false
	}
	out := make([]completion.OutputContent, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, completion.OutputContent{Type: "text", Text: v})
		case map[string]any:
			c, ok := outputContentFromMap(v)
			if !ok {
				return nil, false
			}
			out = append(out, c)
		default:
			return nil, false
		}
	}
	return out, true
}

func outputContentFromMap(v map[string]any) (completion.OutputContent, bool) {
	switch v["type"] {
	case "text":
		text, ok := v["text"].(string)
		return completion.OutputContent{Type: "text", Text: text}, ok
	case "media":
		data, ok := v["data"].(string)
		if !ok {
			return completion.OutputContent{}, false
		}
		mediaType, _ := v["mediaType"].(string)
		if mediaType == "" {
			mediaType, _ = v["mimeType"].(string)
		}
		return completion.OutputContent{Type: "media", Data: data, MediaType: mediaType}, true
	default:
		return completion.OutputContent{}, false
	}
}
