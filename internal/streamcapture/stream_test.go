package streamcapture

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmpipe/internal/completion"
	"llmpipe/internal/core"
)

func intPtr(v int) *int { return &v }

// failingStream yields its chunks and then err.
type failingStream struct {
	chunks []completion.Chunk
	err    error
	closed bool
}

func (s *failingStream) Recv() (completion.Chunk, error) {
	if len(s.chunks) == 0 {
		return nil, s.err
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *failingStream) Close() error {
	s.closed = true
	return nil
}

func TestWrap_CapturesAndForwards(t *testing.T) {
	input := []completion.Chunk{
		completion.TextDelta{Delta: "Hello, "},
		completion.TextDelta{Delta: "world!"},
		completion.FinishChunk{
			FinishReason: "stop",
			Usage:        completion.Usage{InputTokens: intPtr(10), OutputTokens: intPtr(5)},
		},
	}

	var results []core.CapturedResult
	s := Wrap(completion.NewSliceStream(input...), func(r core.CapturedResult) {
		results = append(results, r)
	})

	forwarded, err := completion.Drain(s)
	require.NoError(t, err)

	assert.Equal(t, input, forwarded)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, "Hello, world!", got.Text)
	assert.Equal(t, "", got.Reasoning)
	assert.Equal(t, "stop", got.FinishReason)
	require.NotNil(t, got.Tokens.Prompt)
	require.NotNil(t, got.Tokens.Completion)
	assert.Equal(t, 10, *got.Tokens.Prompt)
	assert.Equal(t, 5, *got.Tokens.Completion)
	assert.Nil(t, got.Tokens.Cached)
	assert.Nil(t, got.Tokens.Reasoning)
}

func TestWrap_MissingFinishChunk(t *testing.T) {
	var got core.CapturedResult
	s := Wrap(completion.NewSliceStream(completion.TextDelta{Delta: "partial"}), func(r core.CapturedResult) {
		got = r
	})

	_, err := completion.Drain(s)
	require.NoError(t, err)

	assert.Equal(t, "partial", got.Text)
	assert.Equal(t, core.FinishReasonUnknown, got.FinishReason)
	assert.Equal(t, core.Tokens{}, got.Tokens)
}

func TestWrap_EmptyFinishReason(t *testing.T) {
	var got core.CapturedResult
	_, err := completion.Drain(Wrap(completion.NewSliceStream(
		completion.TextDelta{Delta: "done"},
		completion.FinishChunk{Usage: completion.Usage{OutputTokens: intPtr(1)}},
	), func(r core.CapturedResult) {
		got = r
	}))
	require.NoError(t, err)

	assert.Equal(t, core.FinishReasonUnknown, got.FinishReason)
	require.NotNil(t, got.Tokens.Completion)
	assert.Equal(t, 1, *got.Tokens.Completion)
}

func TestWrap_PassesThroughOtherChunks(t *testing.T) {
	input := []completion.Chunk{
		completion.StreamStart{Warnings: []string{"w"}},
		completion.ResponseMetadataChunk{ResponseMetadata: completion.ResponseMetadata{ID: "resp-1"}},
		completion.ReasoningDelta{Delta: "step 1. "},
		completion.RawChunk{Kind: "x-provider-event", Value: 42},
		completion.ReasoningDelta{Delta: "step 2."},
		completion.FileChunk{MediaType: "image/png", Data: []byte{0x89}},
		completion.ToolCallChunk{ToolCallID: "call-1", ToolName: "search", Input: map[string]any{"q": "go"}},
		completion.ToolCallChunk{ToolCallID: "call-2", ToolName: "now"},
		completion.FinishChunk{FinishReason: "tool-calls", Usage: completion.Usage{CachedInputTokens: intPtr(3)}},
	}

	var got core.CapturedResult
	forwarded, err := completion.Drain(Wrap(completion.NewSliceStream(input...), func(r core.CapturedResult) {
		got = r
	}))
	require.NoError(t, err)

	assert.Equal(t, input, forwarded)
	assert.Equal(t, "step 1. step 2.", got.Reasoning)
	assert.Empty(t, got.Text)
	assert.Equal(t, []core.CapturedFile{{MediaType: "image/png", Data: []byte{0x89}}}, got.Files)
	assert.Equal(t, []core.CapturedToolCall{
		{ID: "call-1", Name: "search", Arguments: map[string]any{"q": "go"}},
		{ID: "call-2", Name: "now"},
	}, got.ToolCalls)
	assert.Equal(t, "tool-calls", got.FinishReason)
	require.NotNil(t, got.Tokens.Cached)
	assert.Equal(t, 3, *got.Tokens.Cached)
	assert.Nil(t, got.Tokens.Prompt)
}

func TestWrap_FinishFiresOnce(t *testing.T) {
	calls := 0
	s := Wrap(completion.NewSliceStream(completion.TextDelta{Delta: "a"}), func(core.CapturedResult) {
		calls++
	})

	_, err := completion.Drain(s)
	require.NoError(t, err)
	_, err = s.Recv()
	assert.Equal(t, io.EOF, err)

	assert.Equal(t, 1, calls)
}

func TestWrap_ErrorHandler(t *testing.T) {
	boom := errors.New("connection reset")
	inner := &failingStream{
		chunks: []completion.Chunk{completion.TextDelta{Delta: "a"}},
		err:    boom,
	}

	var (
		finished bool
		reported []error
	)
	s := Wrap(inner, func(core.CapturedResult) { finished = true }, WithErrorHandler(func(err error) {
		reported = append(reported, err)
	}))

	forwarded, err := completion.Drain(s)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, forwarded, 1)

	_, err = s.Recv()
	assert.ErrorIs(t, err, boom)

	assert.False(t, finished)
	assert.Equal(t, []error{boom}, reported)

	require.NoError(t, s.Close())
	assert.True(t, inner.closed)
}

func TestFinish_IsPure(t *testing.T) {
	var acc Accumulator
	acc.Observe(completion.TextDelta{Delta: "x"})

	first := Finish(acc)
	second := Finish(acc)

	assert.Equal(t, first, second)
	assert.Equal(t, "x", first.Text)
}
