package core

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid reports whether r is one of the fixed message roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	default:
		return false
	}
}

// ProviderOptions holds provider-namespaced attributes, keyed by namespace
// (a provider identifier or the reserved "promptl" namespace).
type ProviderOptions map[string]map[string]any

// Clone returns a deep copy of the namespace maps. Values inside a namespace
// are copied shallowly.
func (o ProviderOptions) Clone() ProviderOptions {
	if o == nil {
		return nil
	}
	out := make(ProviderOptions, len(o))
	for ns, attrs := range o {
		out[ns] = cloneMap(attrs)
	}
	return out
}

// Message is the internal representation of a single chat message.
type Message struct {
	Role      Role
	Content   Content
	ToolCalls []ToolCall

	// ProviderOptions are provider-namespaced attributes that survive the
	// external completion format.
	ProviderOptions ProviderOptions

	// Metadata is the internal side-channel bag. The external format drops it,
	// so it must be wrapped into ProviderOptions before translation.
	Metadata map[string]any

	// Extra holds top-level attributes that are not part of the message schema.
	// It is populated when decoding raw messages and emptied by extraction.
	Extra map[string]any
}

// ToolCall is the compact tool-call representation carried next to content.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Content models message content, which is either a bare string or a list of
// parts.
type Content struct {
	Text   string
	Parts  []Part
	IsText bool
}

// TextContent returns string content.
func TextContent(text string) Content {
	return Content{Text: text, IsText: true}
}

// PartsContent returns array content.
func PartsContent(parts ...Part) Content {
	if parts == nil {
		parts = []Part{}
	}
	return Content{Parts: parts}
}

// AsParts returns the content as parts. String content becomes a single text
// part.
func (c Content) AsParts() []Part {
	if c.IsText {
		return []Part{TextPart{Text: c.Text}}
	}
	return c.Parts
}

// IsEmpty reports whether the content is an empty string, an empty array, or
// an array whose every part is an empty text part.
func (c Content) IsEmpty() bool {
	if c.IsText {
		return c.Text == ""
	}
	for _, p := range c.Parts {
		tp, ok := p.(TextPart)
		if !ok || tp.Text != "" {
			return false
		}
	}
	return true
}

// Clone returns a copy of the content with its own parts slice.
func (c Content) Clone() Content {
	if c.IsText {
		return c
	}
	out := Content{Parts: make([]Part, len(c.Parts))}
	copy(out.Parts, c.Parts)
	return out
}

// Clone returns a copy of the message that shares no slices or maps with m.
func (m Message) Clone() Message {
	out := Message{
		Role:            m.Role,
		Content:         m.Content.Clone(),
		ProviderOptions: m.ProviderOptions.Clone(),
		Metadata:        cloneMap(m.Metadata),
		Extra:           cloneMap(m.Extra),
	}
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(out.ToolCalls, m.ToolCalls)
	}
	return out
}

// CloneMessages copies a message list.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
