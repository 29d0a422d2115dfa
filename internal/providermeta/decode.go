package providermeta

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"llmpipe/internal/core"
)

// Allow-lists of the schema fields per entity. Anything else found on a
// message lands in Message.Extra; anything else found on a part lands in the
// part's side-channel bag.
var (
	messageFields = map[string]bool{
		"role":            true,
		"content":         true,
		"toolCalls":       true,
		"providerOptions": true,
		"_promptl":        true,
	}

	partFields = map[core.PartKind]map[string]bool{
		core.PartText:              {"type": true, "text": true},
		core.PartImage:             {"type": true, "image": true, "mimeType": true},
		core.PartFile:              {"type": true, "file": true, "mimeType": true},
		core.PartReasoning:         {"type": true, "text": true},
		core.PartRedactedReasoning: {"type": true, "data": true},
		core.PartToolCall:          {"type": true, "toolCallId": true, "toolName": true, "args": true},
		core.PartToolResult:        {"type": true, "toolCallId": true, "toolName": true, "result": true, "isError": true},
	}
)

// partOptionFields are recognized on every part in addition to its schema.
var partOptionFields = map[string]bool{"providerOptions": true, "_promptl": true}

// DecodeMessages parses a JSON array of messages. Unrecognized message
// attributes are kept in Extra so that Extract can namespace them.
func DecodeMessages(data []byte) ([]core.Message, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, errors.New("messages must be a JSON array")
	}

	var (
		msgs []core.Message
		err  error
	)
	root.ForEach(func(_, value gjson.Result) bool {
		var m core.Message
		m, err = decodeMessage(len(msgs), value)
		if err != nil {
			err = fmt.Errorf("message %d: %w", len(msgs), err)
			return false
		}
		msgs = append(msgs, m)
		return true
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func decodeMessage(idx int, v gjson.Result) (core.Message, error) {
	if !v.IsObject() {
		return core.Message{}, errors.New("message must be an object")
	}

	m := core.Message{Role: core.Role(v.Get("role").String())}
	if !m.Role.Valid() {
		return core.Message{}, &core.UnknownRoleError{Role: m.Role, Index: idx}
	}

	content := v.Get("content")
	switch {
	case !content.Exists() || content.Type == gjson.Null:
		m.Content = core.TextContent("")
	case content.Type == gjson.String:
		m.Content = core.TextContent(content.String())
	case content.IsArray():
		parts := []core.Part{}
		var err error
		content.ForEach(func(_, pv gjson.Result) bool {
			var p core.Part
			p, err = decodePart(pv)
			if err != nil {
				return false
			}
			parts = append(parts, p)
			return true
		})
		if err != nil {
			return core.Message{}, err
		}
		m.Content = core.PartsContent(parts...)
	default:
		return core.Message{}, fmt.Errorf("unsupported content type %s", content.Type)
	}

	if calls := v.Get("toolCalls"); calls.IsArray() {
		calls.ForEach(func(_, cv gjson.Result) bool {
			m.ToolCalls = append(m.ToolCalls, core.ToolCall{
				ID:        cv.Get("id").String(),
				Name:      cv.Get("name").String(),
				Arguments: objectOrNil(cv.Get("arguments")),
			})
			return true
		})
	}

	m.ProviderOptions = decodeProviderOptions(v.Get("providerOptions"))
	m.Metadata = objectOrNil(v.Get("_promptl"))

	v.ForEach(func(key, value gjson.Result) bool {
		if messageFields[key.String()] {
			return true
		}
		if m.Extra == nil {
			m.Extra = map[string]any{}
		}
		m.Extra[key.String()] = value.Value()
		return true
	})

	return m, nil
}

func decodePart(v gjson.Result) (core.Part, error) {
	kind := core.PartKind(v.Get("type").String())
	known, ok := partFields[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported content part type %q", string(kind))
	}

	opts := core.PartOptions{
		ProviderOptions: decodeProviderOptions(v.Get("providerOptions")),
		Metadata:        objectOrNil(v.Get("_promptl")),
	}
	v.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if known[k] || partOptionFields[k] {
			return true
		}
		if opts.Metadata == nil {
			opts.Metadata = map[string]any{}
		}
		opts.Metadata[k] = value.Value()
		return true
	})

	switch kind {
	case core.PartText:
		return core.TextPart{Text: v.Get("text").String(), PartOptions: opts}, nil
	case core.PartImage:
		return core.ImagePart{Image: v.Get("image").Value(), MimeType: v.Get("mimeType").String(), PartOptions: opts}, nil
	case core.PartFile:
		return core.FilePart{File: v.Get("file").Value(), MimeType: v.Get("mimeType").String(), PartOptions: opts}, nil
	case core.PartReasoning:
		return core.ReasoningPart{Text: v.Get("text").String(), PartOptions: opts}, nil
	case core.PartRedactedReasoning:
		return core.RedactedReasoningPart{Data: v.Get("data").String(), PartOptions: opts}, nil
	case core.PartToolCall:
		return core.ToolCallPart{
			ToolCallID:  v.Get("toolCallId").String(),
			ToolName:    v.Get("toolName").String(),
			Args:        objectOrNil(v.Get("args")),
			PartOptions: opts,
		}, nil
	case core.PartToolResult:
		return core.ToolResultPart{
			ToolCallID:  v.Get("toolCallId").String(),
			ToolName:    v.Get("toolName").String(),
			Result:      v.Get("result").Value(),
			IsError:     v.Get("isError").Bool(),
			PartOptions: opts,
		}, nil
	}
	return nil, fmt.Errorf("unsupported content part type %q", string(kind))
}

func decodeProviderOptions(v gjson.Result) core.ProviderOptions {
	if !v.IsObject() {
		return nil
	}
	opts := core.ProviderOptions{}
	v.ForEach(func(ns, attrs gjson.Result) bool {
		if m := objectOrNil(attrs); m != nil {
			opts[ns.String()] = m
		}
		return true
	})
	if len(opts) == 0 {
		return nil
	}
	return opts
}

func objectOrNil(v gjson.Result) map[string]any {
	if !v.IsObject() {
		return nil
	}
	m, _ := v.Value().(map[string]any)
	return m
}
