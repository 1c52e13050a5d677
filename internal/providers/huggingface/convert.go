package huggingface

import (
	"strings"

	"github.com/haasonsaas/conduit/pkg/conduit"
)

// promptOf flattens a conversation into a single role-marker-delimited
// prompt string — HuggingFace's text-generation task takes one `inputs`
// string, not a structured messages array, so there is no wire-native
// multi-turn shape to convert into.
func promptOf(messages []conduit.Message) string {
	var b strings.Builder
	for _, m := range messages {
		marker := "User"
		switch m.Role {
		case conduit.RoleSystem:
			marker = "System"
		case conduit.RoleAssistant:
			marker = "Assistant"
		case conduit.RoleTool:
			marker = "Tool"
		}
		b.WriteString(marker)
		b.WriteString(": ")
		if m.IsMultimodal() {
			for _, p := range m.Parts {
				if p.Kind == conduit.ContentText {
					b.WriteString(p.Text)
				}
			}
		} else {
			b.WriteString(m.Text)
		}
		b.WriteString("\n")
	}
	b.WriteString("Assistant: ")
	return b.String()
}

func buildParameters(cfg conduit.GenerateConfig) generateParameters {
	return generateParameters{
		Temperature:       cfg.Temperature,
		TopP:              cfg.TopP,
		TopK:              cfg.TopK,
		MaxNewTokens:      cfg.MaxTokens,
		RepetitionPenalty: cfg.RepetitionPenalty,
		StopSequences:     cfg.StopSequences,
		ReturnFullText:    false,
	}
}
