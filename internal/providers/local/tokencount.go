package local

import (
	"context"

	"github.com/haasonsaas/conduit/pkg/conduit"
)

// CountTokens uses the engine's own tokenizer, unlike the cloud providers'
// character-based estimate — the local adapter always has the model (and
// therefore its exact tokenizer) resident. Message-level counts include an
// approximate per-message overhead of 4 tokens, documented as approximate
// to match the cloud providers' convention even though the body count
// itself is exact.
func (p *Provider) CountTokens(ctx context.Context, model string, messages []conduit.Message) (int, error) {
	_, tokenizer, err := p.cfg.Loader.Load(ctx, p.modelOrDefault(model))
	if err != nil {
		return 0, wrapLoadError(err)
	}

	const perMessageOverhead = 4
	total := 0
	for _, m := range messages {
		total += perMessageOverhead
		total += len(tokenizer.Encode(textOf(m)))
	}
	return total, nil
}
