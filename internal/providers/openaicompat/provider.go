package openaicompat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/haasonsaas/conduit/internal/providers"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

// Provider fronts any OpenAI-compatible Chat Completions endpoint.
type Provider struct {
	cfg Config
	key string // resolved once at construction, per the one-shot config rule
}

// New resolves cfg's auth and returns a ready Provider. Resolution fails
// early with AuthenticationFailed if a key is required and unavailable.
func New(cfg Config) (*Provider, error) {
	key, err := providers.ResolveKey(cfg.authConfig())
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, key: key}, nil
}

func (p *Provider) Name() string { return p.cfg.variantName() }

func (p *Provider) Availability() providers.Availability {
	if p.cfg.Variant == VariantOllama || p.cfg.Variant == VariantCustom {
		return providers.Available()
	}
	if p.key == "" {
		return providers.Unavailable("no API key configured")
	}
	return providers.Available()
}

func (p *Provider) Capabilities() providers.CapabilitySet {
	caps := []providers.Capability{
		providers.CapText,
		providers.CapStreaming,
		providers.CapStructuredOutput,
		providers.CapToolCalling,
		providers.CapVision,
		providers.CapTokenCount,
	}
	if p.cfg.Variant == VariantOpenAI {
		caps = append(caps, providers.CapEmbeddings, providers.CapTranscription, providers.CapImageGen)
	}
	return providers.NewCapabilitySet(caps...)
}

func (p *Provider) headers(ctx context.Context) (map[string]string, error) {
	base := map[string]string{}
	auth := map[string]string{}

	if p.cfg.Variant == VariantAzure {
		token := p.cfg.AzureADToken
		if token == "" && p.cfg.AzureADTokenFunc != nil {
			t, err := p.cfg.AzureADTokenFunc()
			if err != nil {
				return nil, conduit.AuthenticationFailed("azure AD token refresh failed").WithCause(err)
			}
			token = t
		}
		if token != "" {
			auth["Authorization"] = "Bearer " + token
		} else if p.key != "" {
			auth["api-key"] = p.key
		}
	} else if p.key != "" {
		auth["Authorization"] = "Bearer " + p.key
	}

	backend := map[string]string{}
	if p.cfg.Variant == VariantOpenRouter {
		if p.cfg.HTTPReferer != "" {
			backend["HTTP-Referer"] = p.cfg.HTTPReferer
		}
		if p.cfg.XTitle != "" {
			backend["X-Title"] = p.cfg.XTitle
		}
	}

	tail := map[string]string{
		"Content-Type": "application/json",
		"User-Agent":   "conduit-go/1.0",
	}

	return providers.BuildHeaders(base, auth, backend, tail), nil
}

func (p *Provider) endpoint() string {
	if p.cfg.Variant == VariantAzure {
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			p.cfg.BaseURL, p.cfg.AzureDeployment, p.cfg.AzureAPIVersion)
	}
	return p.cfg.defaultBaseURL() + "/chat/completions"
}

func (p *Provider) Generate(ctx context.Context, messages []conduit.Message, model string, cfg conduit.GenerateConfig) (conduit.GenerationResult, error) {
	if err := providers.CheckCapability(p.Capabilities(), providers.CapText, "text generation"); err != nil {
		return conduit.GenerationResult{}, err
	}

	req := buildRequest(messages, model, cfg, false)
	body, err := json.Marshal(req)
	if err != nil {
		return conduit.GenerationResult{}, conduit.GenerationFailed(err)
	}

	headers, err := p.headers(ctx)
	if err != nil {
		return conduit.GenerationResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.EffectiveTimeout())
	defer cancel()

	start := time.Now()
	resp, err := providers.Execute(ctx, p.cfg.httpClient(), providers.Request{
		Method:  "POST",
		URL:     p.endpoint(),
		Headers: headers,
		Body:    body,
	}, cfg.EffectiveMaxRetries(), parseErrorBody)
	if err != nil {
		return conduit.GenerationResult{}, err
	}

	var decoded chatResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return conduit.GenerationResult{}, conduit.GenerationFailed(err)
	}
	if len(decoded.Choices) == 0 {
		return conduit.GenerationResult{}, conduit.GenerationFailed(fmt.Errorf("openaicompat: empty choices array"))
	}

	choice := decoded.Choices[0]
	result := conduit.GenerationResult{
		Text:           textOf(choice.Message.Content),
		GenerationTime: time.Since(start),
	}
	if choice.FinishReason != nil {
		fr := providers.MapFinishReason(*choice.FinishReason)
		result.FinishReason = &fr
	}
	if decoded.Usage != nil {
		result.TokenCount = decoded.Usage.CompletionTokens
		result.Usage = &conduit.Usage{
			PromptTokens:     decoded.Usage.PromptTokens,
			CompletionTokens: decoded.Usage.CompletionTokens,
		}
		if secs := result.GenerationTime.Seconds(); secs > 0 {
			rate := float64(decoded.Usage.CompletionTokens) / secs
			result.TokensPerSecond = &rate
		}
	}
	result.RateLimitInfo = providers.ExtractRateLimitInfo(resp.Headers)

	if len(choice.Message.ToolCalls) > 0 {
		result.CompletedToolCalls = decodeCompletedToolCalls(choice.Message.ToolCalls)
	}

	return result, nil
}

func textOf(content any) string {
	s, _ := content.(string)
	return s
}
