package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/haasonsaas/conduit/internal/providers"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

// Provider fronts one HuggingFace Inference endpoint, bound to Config.Repo.
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

func (p *Provider) Name() string { return "huggingface" }

func (p *Provider) Availability() providers.Availability {
	if p.cfg.Repo == "" {
		return providers.Unavailable("no model repo configured")
	}
	if p.key == "" {
		return providers.Unavailable("no API token configured")
	}
	return providers.Available()
}

// Capabilities always reports embeddings/transcription/image-generation
// as supported: the Inference API's task routing is per-repo, so whether
// a given repo actually serves those tasks can only be discovered by
// calling it. CapToolCalling and CapStructuredOutput are never reported —
// the text-generation task has no native tool-call wire shape.
func (p *Provider) Capabilities() providers.CapabilitySet {
	return providers.NewCapabilitySet(
		providers.CapText,
		providers.CapStreaming,
		providers.CapEmbeddings,
		providers.CapTranscription,
		providers.CapImageGen,
	)
}

func (p *Provider) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if p.key != "" {
		h["Authorization"] = "Bearer " + p.key
	}
	return providers.BuildHeaders(h)
}

func (p *Provider) Generate(ctx context.Context, messages []conduit.Message, model string, cfg conduit.GenerateConfig) (conduit.GenerationResult, error) {
	if err := providers.CheckCapability(p.Capabilities(), providers.CapText, "text generation"); err != nil {
		return conduit.GenerationResult{}, err
	}

	req := generateRequest{Inputs: promptOf(messages), Parameters: buildParameters(cfg)}
	body, err := json.Marshal(req)
	if err != nil {
		return conduit.GenerationResult{}, conduit.GenerationFailed(err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.EffectiveTimeout())
	defer cancel()

	start := time.Now()
	resp, err := providers.Execute(ctx, p.cfg.httpClient(), providers.Request{
		Method:  "POST",
		URL:     p.cfg.endpoint(),
		Headers: p.headers(),
		Body:    body,
	}, cfg.EffectiveMaxRetries(), parseErrorBody)
	if err != nil {
		return conduit.GenerationResult{}, err
	}

	var decoded []generateResponseItem
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return conduit.GenerationResult{}, conduit.GenerationFailed(err)
	}
	if len(decoded) == 0 {
		return conduit.GenerationResult{}, conduit.GenerationFailed(fmt.Errorf("huggingface: empty response array"))
	}

	fr := conduit.FinishStop
	result := conduit.GenerationResult{
		Text:           decoded[0].GeneratedText,
		GenerationTime: time.Since(start),
		FinishReason:   &fr,
	}
	result.RateLimitInfo = providers.ExtractRateLimitInfo(resp.Headers)
	return result, nil
}

func parseErrorBody(body []byte) string {
	var e hfErrorBody
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		return ""
	}
	return e.Error
}
