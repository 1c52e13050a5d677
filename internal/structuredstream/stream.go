// Package structuredstream turns a provider's raw text chunk stream into
// a sequence of partially-decoded values of a caller-declared type, using
// jsonrepair to tolerate in-flight JSON and a hash-based dedup so only
// genuinely new partials are emitted.
//
// There is no macro or code generator here to derive a Partial<T> type
// the way the source toolchain does — callers supply a PartialDecoder
// that builds their own tolerant partial type from a StructuredContent,
// and a Decoder for the terminal, fully-populated value.
package structuredstream

import (
	"encoding/json"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/haasonsaas/conduit/internal/jsonrepair"
	"github.com/haasonsaas/conduit/pkg/conduit"
	"github.com/haasonsaas/conduit/pkg/schema"
)

// maxAccumulatedBytes bounds the accumulated text, beyond which Consume
// surfaces InvalidInput rather than growing unbounded.
const maxAccumulatedBytes = 1 << 20 // 1 MiB

// PartialDecoder builds a partial value of T from a StructuredContent
// that may be missing fields — it must never fail on a missing field,
// only on a type mismatch the caller considers fatal.
type PartialDecoder[T any] func(schema.StructuredContent) (T, error)

// Decoder builds the fully-populated terminal value of T.
type Decoder[T any] func(schema.StructuredContent) (T, error)

// Stream accumulates a provider's streamed text and yields deduplicated
// partial decodes of T, finishing with a terminal full decode.
type Stream[T any] struct {
	buf strings.Builder

	partial  PartialDecoder[T]
	final    Decoder[T]
	lastHash uint64
	hasLast  bool
}

// New constructs a Stream bound to partial and final decoders for T.
func New[T any](partial PartialDecoder[T], final Decoder[T]) *Stream[T] {
	return &Stream[T]{partial: partial, final: final}
}

// Consume appends one chunk of raw text and returns a freshly decoded
// partial if it differs (by hash) from the last one emitted. A nil, nil
// result means either the repaired text still doesn't parse, or the
// decode produced a value identical to the last emission — both cases
// mean "keep accumulating, nothing new to yield".
func (s *Stream[T]) Consume(chunk string) (*T, error) {
	if s.buf.Len()+len(chunk) > maxAccumulatedBytes {
		return nil, conduit.InvalidInput("structured stream exceeded 1 MiB accumulation limit")
	}
	s.buf.WriteString(chunk)

	repaired, err := jsonrepair.Repair(s.buf.String())
	if err != nil {
		return nil, nil
	}

	content, err := schema.Parse([]byte(repaired))
	if err != nil {
		return nil, nil
	}

	value, err := s.partial(content)
	if err != nil {
		return nil, nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, nil
	}
	hash := xxhash.Sum64(encoded)
	if s.hasLast && hash == s.lastHash {
		return nil, nil
	}
	s.hasLast = true
	s.lastHash = hash
	return &value, nil
}

// Finalize parses the complete accumulated text (no repair — it is
// expected to already be well-formed JSON once the stream has ended) and
// decodes the terminal T. A parse or decode failure surfaces as
// GenerationFailed, per the terminal-decode contract.
func (s *Stream[T]) Finalize() (T, error) {
	var zero T
	content, err := schema.Parse([]byte(s.buf.String()))
	if err != nil {
		return zero, conduit.GenerationFailed(err)
	}
	value, err := s.final(content)
	if err != nil {
		return zero, conduit.GenerationFailed(err)
	}
	return value, nil
}
