// Package local adapts the polymorphic provider contract onto an
// on-device numeric runtime. The runtime's kernels (weight loading,
// attention, diffusion sampling) are never reimplemented here — the
// package only ever calls the opaque ModelContainer/Tokenizer seams and
// iterates the token stream they hand back.
package local

import "context"

// Token is one emission from a ModelContainer's generation loop.
type Token struct {
	Text     string
	IsFinal  bool
	StopWord string // set when IsFinal and stopped on a stop sequence
}

// TokenStream is iterated by the provider until Next reports no more
// tokens, an error, or ctx is done.
type TokenStream interface {
	Next(ctx context.Context) (Token, bool, error)
}

// Parameters is the engine-native parameter record GenerateConfig is
// converted into before a container.perform call.
type Parameters struct {
	Temperature       float64
	TopP              float64
	TopK              int
	MaxTokens         int
	RepetitionPenalty float64
	PrefillStepSize   int
	MaxKVSize         *int
	KVQuantBits       *int // 4 or 8, nil = unquantized
}

// ModelContainer is the opaque handle to a loaded on-device model. Perform
// begins a generation and returns a token stream; the numeric kernels
// behind it are not this package's concern.
type ModelContainer interface {
	Perform(ctx context.Context, params Parameters, prompt string) (TokenStream, error)
}

// Tokenizer exposes the engine's own tokenizer for local token counting.
type Tokenizer interface {
	Encode(text string) []int
	Decode(ids []int) string
}

// Loader resolves a model id to a ready container and tokenizer,
// downloading/loading on miss. A ModelCache implementation (see
// internal/modelcache) is the production Loader; tests supply a fake.
type Loader interface {
	Load(ctx context.Context, modelID string) (ModelContainer, Tokenizer, error)
}
