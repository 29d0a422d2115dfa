package streamcapture

import (
	"errors"
	"io"

	"llmpipe/internal/completion"
	"llmpipe/internal/core"
)

// Option configures a wrapped stream.
type Option func(*Stream)

// WithErrorHandler registers fn to receive the first receive error other
// than io.EOF. The error is still returned to the caller.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Stream) {
		s.onError = fn
	}
}

// Stream forwards chunks from an inner stream unchanged while feeding them to
// an Accumulator.
type Stream struct {
	inner    completion.ChunkStream
	acc      Accumulator
	onFinish func(core.CapturedResult)
	onError  func(error)
	done     bool
}

// Wrap returns a stream that yields exactly the chunks of inner, in order,
// and calls onFinish once when inner reports io.EOF.
//
// onFinish never fires for a stream that is closed or fails before its end.
func Wrap(inner completion.ChunkStream, onFinish func(core.CapturedResult), opts ...Option) *Stream {
	s := &Stream{inner: inner, onFinish: onFinish}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recv returns the next chunk of the inner stream.
func (s *Stream) Recv() (completion.Chunk, error) {
	c, err := s.inner.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.finish()
			return nil, io.EOF
		}
		s.fail(err)
		return nil, err
	}
	s.acc.Observe(c)
	return c, nil
}

// Close closes the inner stream.
func (s *Stream) Close() error {
	return s.inner.Close()
}

func (s *Stream) finish() {
	if s.done {
		return
	}
	s.done = true
	if s.onFinish != nil {
		s.onFinish(Finish(s.acc))
	}
}

func (s *Stream) fail(err error) {
	if s.done {
		return
	}
	s.done = true
	if s.onError != nil {
		s.onError(err)
	}
}
