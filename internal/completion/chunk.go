package completion

// Chunk is one incremental unit of a streamed completion.
type Chunk interface {
	ChunkType() string
	isChunk()
}

// TextDelta appends to the visible answer text.
type TextDelta struct {
	ID    string
	Delta string
}

// ReasoningDelta appends to the model's reasoning text.
type ReasoningDelta struct {
	ID    string
	Delta string
}

// FileChunk is a complete file produced by the model.
type FileChunk struct {
	MediaType string
	Data      []byte
}

// ToolCallChunk is a fully formed tool call. Partial tool-call deltas are
// not part of the stream contract.
type ToolCallChunk struct {
	ToolCallID string
	ToolName   string
	Input      map[string]any
}

// FinishChunk ends the completion with its finish reason and token usage.
type FinishChunk struct {
	FinishReason string
	Usage        Usage
}

// StreamStart opens the stream and carries provider warnings.
type StreamStart struct {
	Warnings []string
}

// ResponseMetadataChunk describes the provider response.
type ResponseMetadataChunk struct {
	ResponseMetadata
}

// ErrorChunk is an in-band error reported by the provider.
type ErrorChunk struct {
	Err error
}

// RawChunk carries a provider-specific event untouched.
type RawChunk struct {
	Kind  string
	Value any
}

func (TextDelta) ChunkType() string             { return "text-delta" }
func (ReasoningDelta) ChunkType() string        { return "reasoning-delta" }
func (FileChunk) ChunkType() string             { return "file" }
func (ToolCallChunk) ChunkType() string         { return "tool-call" }
func (FinishChunk) ChunkType() string           { return "finish" }
func (StreamStart) ChunkType() string           { return "stream-start" }
func (ResponseMetadataChunk) ChunkType() string { return "response-metadata" }
func (ErrorChunk) ChunkType() string            { return "error" }
func (c RawChunk) ChunkType() string {
	if c.Kind == "" {
		return "raw"
	}
	return c.Kind
}

func (TextDelta) isChunk()             {}
func (ReasoningDelta) isChunk()        {}
func (FileChunk) isChunk()             {}
func (ToolCallChunk) isChunk()         {}
func (FinishChunk) isChunk()           {}
func (StreamStart) isChunk()           {}
func (ResponseMetadataChunk) isChunk() {}
func (ErrorChunk) isChunk()            {}
func (RawChunk) isChunk()              {}
