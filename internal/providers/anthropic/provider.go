package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/haasonsaas/conduit/internal/providers"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

// Provider fronts the Anthropic Messages API.
type Provider struct {
	cfg Config
	key string
}

// New resolves cfg's auth and returns a ready Provider.
func New(cfg Config) (*Provider, error) {
	key, err := providers.ResolveKey(cfg.authConfig())
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, key: key}, nil
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) Availability() providers.Availability {
	if p.key == "" {
		return providers.Unavailable("no API key configured")
	}
	return providers.Available()
}

func (p *Provider) Capabilities() providers.CapabilitySet {
	return providers.NewCapabilitySet(
		providers.CapText,
		providers.CapStreaming,
		providers.CapStructuredOutput,
		providers.CapToolCalling,
		providers.CapVision,
		providers.CapTokenCount,
	)
}

func (p *Provider) headers() map[string]string {
	return providers.BuildHeaders(map[string]string{
		"Content-Type":      "application/json",
		"anthropic-version": p.cfg.apiVersion(),
		"x-api-key":         p.key,
	})
}

func (p *Provider) endpoint() string {
	return p.cfg.baseURL() + "/v1/messages"
}

func (p *Provider) modelOrDefault(model string) string {
	if model != "" {
		return model
	}
	return p.cfg.model()
}

func (p *Provider) Generate(ctx context.Context, messages []conduit.Message, model string, cfg conduit.GenerateConfig) (conduit.GenerationResult, error) {
	if err := providers.CheckCapability(p.Capabilities(), providers.CapText, "text generation"); err != nil {
		return conduit.GenerationResult{}, err
	}

	req := buildRequest(messages, p.modelOrDefault(model), cfg, false)
	body, err := json.Marshal(req)
	if err != nil {
		return conduit.GenerationResult{}, conduit.GenerationFailed(err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.EffectiveTimeout())
	defer cancel()

	start := time.Now()
	resp, err := providers.Execute(ctx, p.cfg.httpClient(), providers.Request{
		Method:  "POST",
		URL:     p.endpoint(),
		Headers: p.headers(),
		Body:    body,
	}, cfg.EffectiveMaxRetries(), parseErrorBody)
	if err != nil {
		return conduit.GenerationResult{}, err
	}

	var decoded messageResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return conduit.GenerationResult{}, conduit.GenerationFailed(err)
	}

	result := conduit.GenerationResult{
		Text:           textOf(decoded.Content),
		GenerationTime: time.Since(start),
	}
	if decoded.StopReason != nil {
		fr := providers.MapFinishReason(*decoded.StopReason)
		result.FinishReason = &fr
	}
	if decoded.Usage != nil {
		result.TokenCount = decoded.Usage.OutputTokens
		result.Usage = &conduit.Usage{
			PromptTokens:     decoded.Usage.InputTokens,
			CompletionTokens: decoded.Usage.OutputTokens,
		}
		if secs := result.GenerationTime.Seconds(); secs > 0 {
			rate := float64(decoded.Usage.OutputTokens) / secs
			result.TokensPerSecond = &rate
		}
	}
	result.RateLimitInfo = providers.ExtractRateLimitInfo(resp.Headers)

	if calls := extractToolCalls(decoded.Content); len(calls) > 0 {
		result.CompletedToolCalls = calls
	}

	if len(decoded.Content) == 0 {
		return conduit.GenerationResult{}, conduit.GenerationFailed(fmt.Errorf("anthropic: empty content array"))
	}
	return result, nil
}
