// Package providers defines the polymorphic AIProvider contract shared by
// every concrete backend (Anthropic, OpenAI-compatible, HuggingFace, local),
// plus the executor, header, and auth-resolution helpers every concrete
// provider's transport is built on.
package providers

import (
	"context"

	"github.com/haasonsaas/conduit/pkg/conduit"
)

// Capability is one unit of functionality a provider may support.
type Capability int

const (
	CapText Capability = iota
	CapStreaming
	CapStructuredOutput
	CapToolCalling
	CapVision
	CapEmbeddings
	CapTranscription
	CapImageGen
	CapTokenCount
)

// CapabilitySet is a pure function result: which capabilities a provider
// instance supports, given its backend kind and configured credentials.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a CapabilitySet from a list of capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether the set contains c.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Availability is the outcome of a provider's availability() check.
type Availability struct {
	Available bool
	Reason    string // populated when Available is false
}

// Available constructs an available Availability.
func Available() Availability { return Availability{Available: true} }

// Unavailable constructs an unavailable Availability with a reason.
func Unavailable(reason string) Availability {
	return Availability{Available: false, Reason: reason}
}

// AIProvider is the polymorphic contract every concrete backend implements.
type AIProvider interface {
	// Name identifies the provider for logging/metrics/tracing.
	Name() string

	// Availability is a deterministic function of environment (arch, OS
	// version, presence of credentials) — never performs network I/O.
	Availability() Availability

	// Capabilities is a pure function of the provider's backend kind and
	// configured credentials.
	Capabilities() CapabilitySet

	// Generate performs an at-most-once request with retry (see Execute).
	Generate(ctx context.Context, messages []conduit.Message, model string, cfg conduit.GenerateConfig) (conduit.GenerationResult, error)

	// Stream performs a streaming request. The returned channel is closed
	// when the stream is finished (complete, errored, or cancelled). When
	// the backend reports a finish, the terminal chunk (IsComplete true) is
	// the last value sent before close; a stream whose body ends or fails
	// to decode without a finish event is closed with no terminal chunk.
	Stream(ctx context.Context, messages []conduit.Message, model string, cfg conduit.GenerateConfig) (<-chan conduit.GenerationChunk, error)
}

// CheckCapability fails fast with ProviderUnavailable if the requested
// capability isn't supported, without making a network call — the gate
// required by the provider contract's polymorphism-over-capabilities rule.
func CheckCapability(caps CapabilitySet, required Capability, what string) *conduit.Error {
	if caps.Has(required) {
		return nil
	}
	return conduit.ProviderUnavailable(what + " is not supported by this provider")
}
