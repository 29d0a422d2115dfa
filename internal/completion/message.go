// Package completion defines the external completion-API shapes accepted by
// the model host: request messages, results, stream chunks and the model
// interface the pipeline calls.
package completion

import "llmpipe/internal/core"

// Message is a message in the external format. Fields the format does not
// know about are dropped by the host; only ProviderOptions survive.
type Message struct {
	Role core.Role

	// System holds the content of a system message.
	System string

	// Text holds user content collapsed to a bare string. IsText reports
	// whether the collapsed form is used.
	Text   string
	IsText bool

	Parts []Part

	ProviderOptions core.ProviderOptions
}

// Part is a content part in the external format.
type Part interface {
	Type() string
	isPart()
}

// TextPart is plain text content.
type TextPart struct {
	Text            string
	ProviderOptions core.ProviderOptions
}

// ImagePart is an image given as a URL, base64 string or raw bytes.
type ImagePart struct {
	Image           any
	MediaType       string
	ProviderOptions core.ProviderOptions
}

// FilePart is a file given as a URL, base64 string or raw bytes.
type FilePart struct {
	Data            any
	MediaType       string
	ProviderOptions core.ProviderOptions
}

// ReasoningPart is model reasoning text.
type ReasoningPart struct {
	Text            string
	ProviderOptions core.ProviderOptions
}

// RedactedReasoningPart is reasoning the provider returned in opaque form.
type RedactedReasoningPart struct {
	Data            string
	ProviderOptions core.ProviderOptions
}

// ToolCallPart is a tool call. Input is nil when no arguments were sent.
type ToolCallPart struct {
	ToolCallID      string
	ToolName        string
	Input           map[string]any
	ProviderOptions core.ProviderOptions
}

// ToolResultPart returns the output of a tool call to the model.
type ToolResultPart struct {
	ToolCallID      string
	ToolName        string
	Output          ToolResultOutput
	ProviderOptions core.ProviderOptions
}

func (TextPart) Type() string              { return "text" }
func (ImagePart) Type() string             { return "image" }
func (FilePart) Type() string              { return "file" }
func (ReasoningPart) Type() string         { return "reasoning" }
func (RedactedReasoningPart) Type() string { return "redacted-reasoning" }
func (ToolCallPart) Type() string          { return "tool-call" }
func (ToolResultPart) Type() string        { return "tool-result" }

func (TextPart) isPart()              {}
func (ImagePart) isPart()             {}
func (FilePart) isPart()              {}
func (ReasoningPart) isPart()         {}
func (RedactedReasoningPart) isPart() {}
func (ToolCallPart) isPart()          {}
func (ToolResultPart) isPart()        {}

// OutputType selects the tool-result output variant.
type OutputType string

const (
	OutputTypeText      OutputType = "text"
	OutputTypeErrorText OutputType = "error-text"
	OutputTypeContent   OutputType = "content"
	OutputTypeErrorJSON OutputType = "error-json"
	OutputTypeJSON      OutputType = "json"
)

// ToolResultOutput is the shaped result of a tool call.
type ToolResultOutput struct {
	Type OutputType
	// Text is set for text and error-text outputs.
	Text string
	// Content is set for content outputs.
	Content []OutputContent
	// Value is set for json and error-json outputs.
	Value any
}

// OutputContent is one entry of a content output: either text or media.
type OutputContent struct {
	Type      string // "text" or "media"
	Text      string
	Data      string
	MediaType string
}
