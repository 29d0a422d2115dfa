package core

// PartKind is the discriminant of a content part.
type PartKind string

const (
	PartText              PartKind = "text"
	PartImage             PartKind = "image"
	PartFile              PartKind = "file"
	PartReasoning         PartKind = "reasoning"
	PartRedactedReasoning PartKind = "redacted-reasoning"
	PartToolCall          PartKind = "tool-call"
	PartToolResult        PartKind = "tool-result"
)

// Part is one unit of message content. The set of implementations is closed;
// consumers switch over the concrete types.
type Part interface {
	Kind() PartKind
	Options() PartOptions
	WithOptions(PartOptions) Part
	isPart()
}

// PartOptions carries the attributes of a part that are not part of its
// schema: provider-namespaced options and the internal side-channel bag.
type PartOptions struct {
	ProviderOptions ProviderOptions
	Metadata        map[string]any
}

// TextPart is plain text.
type TextPart struct {
	Text string
	PartOptions
}

// ImagePart references an image by URL, data URL or raw bytes.
type ImagePart struct {
	Image    any
	MimeType string
	PartOptions
}

// FilePart references a file by URL, data URL or raw bytes.
type FilePart struct {
	File     any
	MimeType string
	PartOptions
}

// ReasoningPart is model reasoning text.
type ReasoningPart struct {
	Text string
	PartOptions
}

// RedactedReasoningPart is opaque reasoning data the provider returns encrypted.
type RedactedReasoningPart struct {
	Data string
	PartOptions
}

// ToolCallPart is an inline tool invocation.
type ToolCallPart struct {
	ToolCallID string
	ToolName   string
	// Args is nil when the call carried no arguments.
	Args map[string]any
	// SourceData records where the tool definition came from. nil means the
	// call has not been annotated.
	SourceData *SourceData
	PartOptions
}

// ToolResultPart is the outcome of a tool invocation.
type ToolResultPart struct {
	ToolCallID string
	ToolName   string
	Result     any
	IsError    bool
	PartOptions
}

func (TextPart) Kind() PartKind              { return PartText }
func (ImagePart) Kind() PartKind             { return PartImage }
func (FilePart) Kind() PartKind              { return PartFile }
func (ReasoningPart) Kind() PartKind         { return PartReasoning }
func (RedactedReasoningPart) Kind() PartKind { return PartRedactedReasoning }
func (ToolCallPart) Kind() PartKind          { return PartToolCall }
func (ToolResultPart) Kind() PartKind        { return PartToolResult }

func (p TextPart) Options() PartOptions              { return p.PartOptions }
func (p ImagePart) Options() PartOptions             { return p.PartOptions }
func (p FilePart) Options() PartOptions              { return p.PartOptions }
func (p ReasoningPart) Options() PartOptions         { return p.PartOptions }
func (p RedactedReasoningPart) Options() PartOptions { return p.PartOptions }
func (p ToolCallPart) Options() PartOptions          { return p.PartOptions }
func (p ToolResultPart) Options() PartOptions        { return p.PartOptions }

func (p TextPart) WithOptions(o PartOptions) Part              { p.PartOptions = o; return p }
func (p ImagePart) WithOptions(o PartOptions) Part             { p.PartOptions = o; return p }
func (p FilePart) WithOptions(o PartOptions) Part              { p.PartOptions = o; return p }
func (p ReasoningPart) WithOptions(o PartOptions) Part         { p.PartOptions = o; return p }
func (p RedactedReasoningPart) WithOptions(o PartOptions) Part { p.PartOptions = o; return p }
func (p ToolCallPart) WithOptions(o PartOptions) Part          { p.PartOptions = o; return p }
func (p ToolResultPart) WithOptions(o PartOptions) Part        { p.PartOptions = o; return p }

func (TextPart) isPart()              {}
func (ImagePart) isPart()             {}
func (FilePart) isPart()              {}
func (ReasoningPart) isPart()         {}
func (RedactedReasoningPart) isPart() {}
func (ToolCallPart) isPart()          {}
func (ToolResultPart) isPart()        {}

// SourceData is tool-call provenance attached for observability.
type SourceData struct {
	Source          string `json:"source"`
	ToolName        string `json:"toolName,omitempty"`
	IntegrationName string `json:"integrationName,omitempty"`
}

// ResolvedTool is an entry of the resolved-tools table.
type ResolvedTool struct {
	Name       string      `json:"name"`
	SourceData *SourceData `json:"sourceData,omitempty"`
}

// ResolvedTools maps tool names to their resolution.
type ResolvedTools map[string]ResolvedTool
