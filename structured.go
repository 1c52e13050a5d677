package conduit

import (
	"context"

	"github.com/haasonsaas/conduit/internal/structuredstream"
	"github.com/haasonsaas/conduit/pkg/conduit"
	"github.com/haasonsaas/conduit/pkg/schema"
)

// PartialDecoder builds a partial value of T from a StructuredContent that
// may be missing fields, for StreamStructured. See structuredstream.PartialDecoder.
type PartialDecoder[T any] = structuredstream.PartialDecoder[T]

// Decoder builds the fully-populated value of T from a complete
// StructuredContent, for GenerateStructured and StreamStructured's
// terminal decode.
type Decoder[T any] = structuredstream.Decoder[T]

// GenerateStructured performs a non-streamed generation and decodes the
// complete response text as T via decode. The provider is responsible for
// producing valid JSON for decode to parse (e.g. via a JSON-mode request
// option set in cfg); GenerateStructured itself adds no JSON-mode
// signalling of its own.
func GenerateStructured[T any](ctx context.Context, c *Client, messages []conduit.Message, model string, cfg conduit.GenerateConfig, decode Decoder[T]) (T, error) {
	var zero T

	result, err := c.Generate(ctx, messages, model, cfg)
	if err != nil {
		return zero, err
	}

	content, err := schema.Parse([]byte(result.Text))
	if err != nil {
		return zero, conduit.GenerationFailed(err)
	}
	return decode(content)
}

// StructuredPartial is one deduplicated partial decode emitted on a
// StructuredStream's Partials channel, or the decode error encountered
// while consuming a chunk (the stream continues after an error; only a
// terminal Collect failure is fatal).
type StructuredPartial[T any] struct {
	Value *T
	Err   error
}

// StructuredStream decodes a provider's raw streamed text into
// successive partial values of T, finishing with a terminal full decode
// available from Collect.
type StructuredStream[T any] struct {
	Partials <-chan StructuredPartial[T]

	done     chan struct{}
	final    T
	finalErr error
}

// StreamStructured performs a streaming generation and decodes the
// accumulated text incrementally via partial, finishing with final once
// the stream completes.
func StreamStructured[T any](ctx context.Context, c *Client, messages []conduit.Message, model string, cfg conduit.GenerateConfig, partial PartialDecoder[T], final Decoder[T]) (*StructuredStream[T], error) {
	chunks, err := c.Stream(ctx, messages, model, cfg)
	if err != nil {
		return nil, err
	}
	return newStructuredStream(chunks, partial, final), nil
}

func newStructuredStream[T any](chunks <-chan conduit.GenerationChunk, partial PartialDecoder[T], final Decoder[T]) *StructuredStream[T] {
	partials := make(chan StructuredPartial[T])
	s := &StructuredStream[T]{Partials: partials, done: make(chan struct{})}
	inner := structuredstream.New(partial, final)

	go func() {
		defer close(partials)
		defer close(s.done)

		for chunk := range chunks {
			if chunk.Text == "" {
				continue
			}
			value, err := inner.Consume(chunk.Text)
			if err != nil {
				partials <- StructuredPartial[T]{Err: err}
				continue
			}
			if value != nil {
				partials <- StructuredPartial[T]{Value: value}
			}
		}
		s.final, s.finalErr = inner.Finalize()
	}()

	return s
}

// Collect blocks until the stream finishes (draining any unread partials)
// and returns the terminal decoded value.
func (s *StructuredStream[T]) Collect() (T, error) {
	for range s.Partials {
	}
	<-s.done
	return s.final, s.finalErr
}
