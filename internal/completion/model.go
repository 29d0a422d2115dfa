package completion

import (
	"context"
	"io"
)

// ChunkStream is a pull-based chunk sequence. Recv returns io.EOF once the
// sequence has ended. The caller must Close the stream.
type ChunkStream interface {
	Recv() (Chunk, error)
	Close() error
}

// Model is the provider-call collaborator. Implementations return a non-nil
// result whenever the error is nil.
type Model interface {
	// Generate executes a blocking completion.
	Generate(ctx context.Context, req *Request) (*GenerateResult, error)

	// Stream starts a streaming completion.
	Stream(ctx context.Context, req *Request) (*StreamResult, error)
}

// ModelFuncs adapts a pair of functions to the Model interface.
type ModelFuncs struct {
	GenerateFunc func(ctx context.Context, req *Request) (*GenerateResult, error)
	StreamFunc   func(ctx context.Context, req *Request) (*StreamResult, error)
}

// Generate calls GenerateFunc.
func (m ModelFuncs) Generate(ctx context.Context, req *Request) (*GenerateResult, error) {
	return m.GenerateFunc(ctx, req)
}

// Stream calls StreamFunc.
func (m ModelFuncs) Stream(ctx context.Context, req *Request) (*StreamResult, error) {
	return m.StreamFunc(ctx, req)
}

// SliceStream is a ChunkStream over a fixed list of chunks.
type SliceStream struct {
	chunks []Chunk
	pos    int
	closed bool
}

// NewSliceStream returns a stream yielding chunks in order.
func NewSliceStream(chunks ...Chunk) *SliceStream {
	return &SliceStream{chunks: chunks}
}

// Recv returns the next chunk or io.EOF.
func (s *SliceStream) Recv() (Chunk, error) {
	if s.closed || s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, nil
}

// Close stops the stream.
func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// Drain reads every chunk from s until io.EOF or an error.
func Drain(s ChunkStream) ([]Chunk, error) {
	var out []Chunk
	for {
		c, err := s.Recv()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
}
