package local

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haasonsaas/conduit/internal/providers"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

// Config configures a Provider instance.
type Config struct {
	Loader       Loader
	DefaultModel string

	// GPUMemoryLimitBytes, if non-zero, is applied once per process
	// lifetime via applyRuntimeSettingsOnce — never re-applied, even
	// across multiple Provider instances.
	GPUMemoryLimitBytes int64
}

// gpuLimitOnce guards the process-global GPU memory limit: the limit is a
// property of the whole process's runtime, so the guard must be shared
// across every Provider instance, not just one.
var (
	gpuLimitOnce    sync.Once
	gpuLimitApplied int64
)

// applyRuntimeSettingsOnce applies cfg's process-global runtime settings
// exactly once per process lifetime, regardless of how many Provider
// instances request it.
func applyRuntimeSettingsOnce(limitBytes int64) {
	if limitBytes <= 0 {
		return
	}
	gpuLimitOnce.Do(func() {
		gpuLimitApplied = limitBytes
		// The actual platform call (e.g. a Metal/CUDA allocator cap) lives
		// in the numeric runtime this package never reimplements; this
		// guard exists so callers can safely request it from every
		// Provider constructor without double-applying.
	})
}

// Provider fronts an on-device model runtime behind the AIProvider
// contract.
type Provider struct {
	cfg Config
}

// New applies cfg's one-shot runtime settings and returns a ready
// Provider.
func New(cfg Config) (*Provider, error) {
	if cfg.Loader == nil {
		return nil, fmt.Errorf("local: Loader is required")
	}
	applyRuntimeSettingsOnce(cfg.GPUMemoryLimitBytes)
	return &Provider{cfg: cfg}, nil
}

func (p *Provider) Name() string { return "local" }

func (p *Provider) Availability() providers.Availability {
	if p.cfg.Loader == nil {
		return providers.Unavailable("no model loader configured")
	}
	return providers.Available()
}

func (p *Provider) Capabilities() providers.CapabilitySet {
	return providers.NewCapabilitySet(
		providers.CapText,
		providers.CapStreaming,
		providers.CapTokenCount,
	)
}

func (p *Provider) modelOrDefault(model string) string {
	if model != "" {
		return model
	}
	return p.cfg.DefaultModel
}

func (p *Provider) Generate(ctx context.Context, messages []conduit.Message, model string, cfg conduit.GenerateConfig) (conduit.GenerationResult, error) {
	if err := providers.CheckCapability(p.Capabilities(), providers.CapText, "text generation"); err != nil {
		return conduit.GenerationResult{}, err
	}

	container, _, err := p.cfg.Loader.Load(ctx, p.modelOrDefault(model))
	if err != nil {
		return conduit.GenerationResult{}, wrapLoadError(err)
	}

	prompt := buildPrompt(messages)
	params := buildParameters(cfg)

	start := time.Now()
	stream, err := container.Perform(ctx, params, prompt)
	if err != nil {
		return conduit.GenerationResult{}, conduit.GenerationFailed(err)
	}

	var text strings.Builder
	tokenCount := 0
	fr := conduit.FinishStop
	for {
		if ctx.Err() != nil {
			c := conduit.FinishCancelled
			fr = c
			break
		}
		tok, more, err := stream.Next(ctx)
		if err != nil {
			return conduit.GenerationResult{}, conduit.GenerationFailed(err)
		}
		if tok.Text != "" {
			text.WriteString(tok.Text)
			tokenCount++
		}
		if tok.StopWord != "" {
			fr = conduit.FinishStopSequence
		}
		if !more || tok.IsFinal {
			break
		}
	}

	elapsed := time.Since(start)
	result := conduit.GenerationResult{
		Text:           text.String(),
		TokenCount:     tokenCount,
		GenerationTime: elapsed,
		FinishReason:   &fr,
		// On-device generations never round-trip through an HTTP response,
		// so there's no server-issued request id to extract; mint one so
		// callers can still correlate a local generation across logs and
		// metrics the same way they would a cloud one.
		RateLimitInfo: &conduit.RateLimitInfo{RequestID: uuid.NewString()},
	}
	if secs := elapsed.Seconds(); secs > 0 && tokenCount > 0 {
		rate := float64(tokenCount) / secs
		result.TokensPerSecond = &rate
	}
	return result, nil
}

func wrapLoadError(err error) *conduit.Error {
	if ce, ok := conduit.IsConduitError(err); ok {
		return ce
	}
	return conduit.ModelNotCached(err.Error())
}
