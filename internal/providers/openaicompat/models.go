package openaicompat

import "github.com/haasonsaas/conduit/pkg/conduit"

// ModelInfo is a static catalog entry, for introspection only — it never
// gates a request, since the spec doesn't require gating on a known model
// list.
type ModelInfo struct {
	ID             string
	ContextWindow  int
	SupportsVision bool
}

// Models returns the provider's known model catalog. Only populated for
// variants with a fixed model list (OpenAI); other variants return nil
// since Ollama/OpenRouter/Azure/custom model IDs are user/deployment
// specific.
func (p *Provider) Models() []ModelInfo {
	if p.cfg.Variant != VariantOpenAI {
		return nil
	}
	return []ModelInfo{
		{ID: "gpt-4o", ContextWindow: 128000, SupportsVision: true},
		{ID: "gpt-4o-mini", ContextWindow: 128000, SupportsVision: true},
		{ID: "gpt-4-turbo", ContextWindow: 128000, SupportsVision: true},
		{ID: "gpt-4", ContextWindow: 8192, SupportsVision: false},
		{ID: "gpt-3.5-turbo", ContextWindow: 16385, SupportsVision: false},
	}
}

// CountTokens is an approximate estimator (character-based, ~4 chars per
// token, plus a flat per-message overhead), documented as approximate per
// the open-question decision. Callers with an exact encoder should use
// conduit.TokenCounter instead.
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
