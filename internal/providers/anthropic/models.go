package anthropic

import "github.com/haasonsaas/conduit/pkg/conduit"

// ModelInfo is a static catalog entry, for introspection only.
type ModelInfo struct {
	ID            string
	ContextWindow int
	SupportsVision bool
}

// Models returns the provider's known model catalog.
func (p *Provider) Models() []ModelInfo {
	return []ModelInfo{
		{ID: "claude-3-5-sonnet-20241022", ContextWindow: 200000, SupportsVision: true},
		{ID: "claude-3-5-haiku-20241022", ContextWindow: 200000, SupportsVision: false},
		{ID: "claude-3-opus-20240229", ContextWindow: 200000, SupportsVision: true},
		{ID: "claude-3-sonnet-20240229", ContextWindow: 200000, SupportsVision: true},
		{ID: "claude-3-haiku-20240307", ContextWindow: 200000, SupportsVision: true},
	}
}

// CountTokens is an approximate estimator — Anthropic exposes an exact
// counting endpoint, but that requires a network round trip, and the
// provider contract's token-counting capability is documented as a local,
// synchronous estimate (matching openaicompat.CountTokens).
func (p *Provider) CountTokens(messages []conduit.Message) int {
	const charsPerToken = 4
	const perMessageOverhead = 4

	total := 0
	for _, m := range messages {
		total += perMessageOverhead
		if m.IsMultimodal() {
			for _, part := range m.Parts {
				total += len(part.Text) / charsPerToken
			}
		} else {
			total += len(m.Text) / charsPerToken
		}
	}
	return total
}
