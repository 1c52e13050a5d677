package local

import (
	"strings"

	"github.com/haasonsaas/conduit/pkg/conduit"
)

// buildPrompt builds a single prompt string from the conversation, keeping
// the system message as a prefix and preserving role markers for the
// remaining turns. A single user-only message bypasses role formatting
// entirely, per the adapter's fast path for the common single-shot case.
func buildPrompt(messages []conduit.Message) string {
	if len(messages) == 1 && messages[0].Role == conduit.RoleUser {
		return textOf(messages[0])
	}

	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case conduit.RoleSystem:
			b.WriteString(textOf(m))
			b.WriteString("\n\n")
		case conduit.RoleUser:
			b.WriteString("User: ")
			b.WriteString(textOf(m))
			b.WriteString("\n")
		case conduit.RoleAssistant:
			b.WriteString("Assistant: ")
			b.WriteString(textOf(m))
			b.WriteString("\n")
		case conduit.RoleTool:
			b.WriteString("Tool(")
			b.WriteString(m.ToolName)
			b.WriteString("): ")
			b.WriteString(textOf(m))
			b.WriteString("\n")
		}
	}
	b.WriteString("Assistant: ")
	return b.String()
}

func textOf(m conduit.Message) string {
	if !m.IsMultimodal() {
		return m.Text
	}
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Kind == conduit.ContentText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

func buildParameters(cfg conduit.GenerateConfig) Parameters {
	p := Parameters{
		Temperature:       0.7,
		TopP:              1.0,
		TopK:              40,
		MaxTokens:         512,
		RepetitionPenalty: 1.0,
		PrefillStepSize:   512,
	}
	if cfg.Temperature != nil {
		p.Temperature = *cfg.Temperature
	}
	if cfg.TopP != nil {
		p.TopP = *cfg.TopP
	}
	if cfg.TopK != nil {
		p.TopK = *cfg.TopK
	}
	if cfg.MaxTokens != nil {
		p.MaxTokens = *cfg.MaxTokens
	}
	if cfg.RepetitionPenalty != nil {
		p.RepetitionPenalty = *cfg.RepetitionPenalty
	}
	return p
}
