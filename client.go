// Package conduit is a unified client for cloud and on-device LLM
// backends: Anthropic Messages, OpenAI-compatible Chat Completions
// (OpenAI, OpenRouter, Ollama, Azure, custom), HuggingFace Inference, and
// local on-device inference, behind one generate/stream surface.
//
// A Client wraps exactly one backend. Construct one with NewAnthropicClient,
// NewOpenAICompatClient, NewHuggingFaceClient, or NewLocalClient, then call Generate or
// Stream. Structured output, tool execution, and on-device model cache
// management are layered on top via GenerateStructured/StreamStructured,
// ToolExecutor, and ModelManager.
package conduit

import (
	"context"

	"github.com/haasonsaas/conduit/internal/providers"
	"github.com/haasonsaas/conduit/internal/providers/anthropic"
	"github.com/haasonsaas/conduit/internal/providers/huggingface"
	"github.com/haasonsaas/conduit/internal/providers/local"
	"github.com/haasonsaas/conduit/internal/providers/openaicompat"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

// Client fronts one concrete backend behind the polymorphic provider
// contract. The zero value is not usable; construct with one of the
// New* functions.
type Client struct {
	provider providers.AIProvider
}

// Name identifies the wrapped backend, for logging/metrics/tracing.
func (c *Client) Name() string { return c.provider.Name() }

// Available reports whether this client's backend is ready to serve
// requests (credentials present, required config set) without making a
// network call.
func (c *Client) Available() bool { return c.provider.Availability().Available }

// Generate performs a single, non-streamed generation.
func (c *Client) Generate(ctx context.Context, messages []conduit.Message, model string, cfg conduit.GenerateConfig) (conduit.GenerationResult, error) {
	return c.provider.Generate(ctx, messages, model, cfg)
}

// Stream performs a streaming generation. The returned channel closes
// when the stream ends; when the backend reports a finish, a terminal
// IsComplete chunk is sent just before close.
func (c *Client) Stream(ctx context.Context, messages []conduit.Message, model string, cfg conduit.GenerateConfig) (<-chan conduit.GenerationChunk, error) {
	return c.provider.Stream(ctx, messages, model, cfg)
}

// NewAnthropicClient wraps the Anthropic Messages backend. cfg.APIKey, if
// empty, falls back to ANTHROPIC_API_KEY (or cfg.EnvVar if set).
func NewAnthropicClient(cfg anthropic.Config) (*Client, error) {
	p, err := anthropic.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{provider: p}, nil
}

// NewOpenAICompatClient wraps the shared OpenAI-compatible backend
// (OpenAI, OpenRouter, Ollama, Azure, or a custom endpoint per
// cfg.Variant).
func NewOpenAICompatClient(cfg openaicompat.Config) (*Client, error) {
	p, err := openaicompat.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{provider: p}, nil
}

// NewHuggingFaceClient wraps the HuggingFace Inference backend, bound to
// a single model repo at construction (cfg.Repo).
func NewHuggingFaceClient(cfg huggingface.Config) (*Client, error) {
	p, err := huggingface.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{provider: p}, nil
}

// NewLocalClient wraps an on-device inference backend driven by cfg.Loader
// (typically an *internal/modelcache.Cache).
func NewLocalClient(cfg local.Config) (*Client, error) {
	p, err := local.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{provider: p}, nil
}
