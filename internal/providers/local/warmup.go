package local

import (
	"context"
	"strings"

	"github.com/haasonsaas/conduit/pkg/conduit"
)

// WarmUp performs a minimal deterministic generation to trigger model
// load, kernel compilation, and KV allocation, so that subsequent
// latency-critical calls are fast. The synthetic prompt is a run of "a"
// characters rather than real text — its content is irrelevant, only its
// length (which drives prefill) and the fixed temperature/maxTokens
// (which drive decode) matter for a deterministic warm-up.
func (p *Provider) WarmUp(ctx context.Context, model string, prefillChars, maxTokens int) error {
	zero := 0.0
	prompt := strings.Repeat("a", prefillChars)
	cfg := conduit.GenerateConfig{
		Temperature: &zero,
		MaxTokens:   &maxTokens,
	}
	_, err := p.Generate(ctx, []conduit.Message{conduit.UserMessage(prompt)}, model, cfg)
	return err
}
