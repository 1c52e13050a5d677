package openaicompat

import (
	"encoding/json"
	"log/slog"

	"github.com/haasonsaas/conduit/internal/jsonrepair"
	"github.com/haasonsaas/conduit/pkg/conduit"
	"github.com/haasonsaas/conduit/pkg/schema"
)

func convertMessages(messages []conduit.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		cm := chatMessage{Role: string(m.Role)}
		if m.Role == conduit.RoleTool {
			cm.ToolCallID = m.ToolCallID
			cm.Name = m.ToolName
			cm.Content = m.Text
			out = append(out, cm)
			continue
		}
		if m.Role == conduit.RoleAssistant && len(m.ToolCalls) > 0 {
			cm.Content = m.Text
			cm.ToolCalls = encodeToolCalls(m.ToolCalls)
			out = append(out, cm)
			continue
		}
		if m.IsMultimodal() {
			parts := make([]chatContentPart, 0, len(m.Parts))
			for _, p := range m.Parts {
				switch p.Kind {
				case conduit.ContentText:
					parts = append(parts, chatContentPart{Type: "text", Text: p.Text})
				case conduit.ContentImage:
					url := p.ImageURL
					if url == "" {
						url = "data:" + p.MimeType + ";base64," + p.ImageBase64
					}
					parts = append(parts, chatContentPart{Type: "image_url", ImageURL: &imageURL{URL: url}})
				}
			}
			cm.Content = parts
		} else {
			cm.Content = m.Text
		}
		out = append(out, cm)
	}
	return out
}

// encodeToolCalls re-marshals already-decoded tool calls back onto the
// wire shape, the inverse of decodeCompletedToolCalls — needed to replay
// an assistant turn's tool calls on the next request in a tool loop.
func encodeToolCalls(calls []conduit.ToolCall) []chatToolCall {
	out := make([]chatToolCall, 0, len(calls))
	for _, c := range calls {
		raw, err := c.Arguments.Render()
		if err != nil {
			raw = "{}"
		}
		out = append(out, chatToolCall{
			ID:   c.ID,
			Type: "function",
			Function: chatToolCallFunc{
				Name:      c.ToolName,
				Arguments: raw,
			},
		})
	}
	return out
}

func convertTools(tools []conduit.Tool) []chatTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]chatTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters.ToJSONSchema(),
			},
		})
	}
	return out
}

// convertToolChoice maps a conduit.ToolChoice to the wire representation.
// A None choice with no tools configured omits the field entirely — tools
// must be present for tool_choice to mean anything on this wire dialect.
func convertToolChoice(tc *conduit.ToolChoice, hasTools bool) any {
	if tc == nil || !hasTools {
		return nil
	}
	switch tc.Mode {
	case conduit.ToolChoiceAuto:
		return "auto"
	case conduit.ToolChoiceAny:
		return "required"
	case conduit.ToolChoiceNone:
		return "none"
	case conduit.ToolChoiceNamed:
		return map[string]any{
			"type":     "function",
			"function": map[string]any{"name": tc.Name},
		}
	default:
		return nil
	}
}

func buildRequest(messages []conduit.Message, model string, cfg conduit.GenerateConfig, stream bool) chatRequest {
	req := chatRequest{
		Model:       model,
		Messages:    convertMessages(messages),
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxTokens,
		Stop:        cfg.StopSequences,
		User:        cfg.UserID,
		Stream:      stream,
		Tools:       convertTools(cfg.Tools),
	}
	req.ToolChoice = convertToolChoice(cfg.ToolChoice, len(req.Tools) > 0)
	return req
}

func decodeCompletedToolCalls(calls []chatToolCall) []conduit.ToolCall {
	out := make([]conduit.ToolCall, 0, len(calls))
	for _, c := range calls {
		args, err := schema.Parse([]byte(c.Function.Arguments))
		if err != nil {
			repaired, repairErr := jsonrepair.Repair(c.Function.Arguments)
			if repairErr != nil {
				slog.Warn("openaicompat: dropping non-stream tool call after repair failure", "tool", c.Function.Name)
				continue
			}
			args, err = schema.Parse([]byte(repaired))
			if err != nil {
				slog.Warn("openaicompat: dropping non-stream tool call after repaired parse failure", "tool", c.Function.Name)
				continue
			}
		}
		out = append(out, conduit.ToolCall{ID: c.ID, ToolName: c.Function.Name, Arguments: args})
	}
	return out
}

func parseErrorBody(body []byte) string {
	var e chatErrorBody
	if err := json.Unmarshal(body, &e); err != nil || e.Error.Message == "" {
		return ""
	}
	return e.Error.Message
}
