package anthropic

import (
	"encoding/json"
	"log/slog"

	"github.com/haasonsaas/conduit/internal/jsonrepair"
	"github.com/haasonsaas/conduit/pkg/conduit"
	"github.com/haasonsaas/conduit/pkg/schema"
)

// convertMessages splits off system messages (Anthropic takes system as a
// top-level field, never a message) and converts tool-role messages into
// tool_result content blocks attached to a user-role turn, per the
// Messages API's conversation shape.
func convertMessages(messages []conduit.Message) (wire []wireMessage, system []textBlock) {
	for _, m := range messages {
		switch m.Role {
		case conduit.RoleSystem:
			system = append(system, textBlock{Type: "text", Text: m.Text})
		case conduit.RoleTool:
			wire = append(wire, wireMessage{
				Role: "user",
				Content: []wireContent{{
					Type:      "tool_result",
					ToolUseID: m.ToolCallID,
					Content:   m.Text,
				}},
			})
		case conduit.RoleAssistant:
			content := contentBlocksOf(m)
			if len(m.ToolCalls) > 0 {
				content = append(content, toolUseBlocksOf(m.ToolCalls)...)
			}
			wire = append(wire, wireMessage{Role: "assistant", Content: content})
		default: // RoleUser
			wire = append(wire, wireMessage{Role: "user", Content: contentBlocksOf(m)})
		}
	}
	return wire, system
}

func contentBlocksOf(m conduit.Message) []wireContent {
	if !m.IsMultimodal() {
		if m.Text == "" {
			return nil
		}
		return []wireContent{{Type: "text", Text: m.Text}}
	}
	blocks := make([]wireContent, 0, len(m.Parts))
	for _, p := range m.Parts {
		switch p.Kind {
		case conduit.ContentText:
			blocks = append(blocks, wireContent{Type: "text", Text: p.Text})
		case conduit.ContentImage:
			src := &imageSource{}
			if p.ImageURL != "" {
				src.Type = "url"
				src.URL = p.ImageURL
			} else {
				src.Type = "base64"
				src.MediaType = p.MimeType
				src.Data = p.ImageBase64
			}
			blocks = append(blocks, wireContent{Type: "image", Source: src})
		}
	}
	return blocks
}

// toolUseBlocksOf re-encodes already-decoded tool calls as tool_use
// content blocks, the inverse of extractToolCalls — needed to replay an
// assistant turn's tool calls on the next request in a tool loop.
func toolUseBlocksOf(calls []conduit.ToolCall) []wireContent {
	out := make([]wireContent, 0, len(calls))
	for _, c := range calls {
		var input any
		if raw, err := c.Arguments.Render(); err == nil {
			var decoded any
			if json.Unmarshal([]byte(raw), &decoded) == nil {
				input = decoded
			}
		}
		out = append(out, wireContent{Type: "tool_use", ID: c.ID, Name: c.ToolName, Input: input})
	}
	return out
}

func convertTools(tools []conduit.Tool) []wireTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]wireTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, wireTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters.ToJSONSchema(),
		})
	}
	return out
}

// convertToolChoice maps a conduit.ToolChoice to Anthropic's tool_choice
// shape. None is expressed as {"type":"none"} rather than omission —
// Anthropic (unlike the OpenAI dialect) treats an absent tool_choice as
// "auto" even with tools present, so the distinction is only preserved by
// sending the field explicitly.
func convertToolChoice(tc *conduit.ToolChoice, hasTools bool) any {
	if tc == nil || !hasTools {
		return nil
	}
	switch tc.Mode {
	case conduit.ToolChoiceAuto:
		return map[string]any{"type": "auto"}
	case conduit.ToolChoiceAny:
		return map[string]any{"type": "any"}
	case conduit.ToolChoiceNone:
		return map[string]any{"type": "none"}
	case conduit.ToolChoiceNamed:
		return map[string]any{"type": "tool", "name": tc.Name}
	default:
		return nil
	}
}

func buildRequest(messages []conduit.Message, model string, cfg conduit.GenerateConfig, stream bool) messageRequest {
	wire, system := convertMessages(messages)
	maxTokens := defaultMaxTokens
	if cfg.MaxTokens != nil {
		maxTokens = *cfg.MaxTokens
	}
	req := messageRequest{
		Model:         model,
		Messages:      wire,
		System:        system,
		MaxTokens:     maxTokens,
		Temperature:   cfg.Temperature,
		TopP:          cfg.TopP,
		TopK:          cfg.TopK,
		StopSequences: cfg.StopSequences,
		Tools:         convertTools(cfg.Tools),
		Stream:        stream,
	}
	req.ToolChoice = convertToolChoice(cfg.ToolChoice, len(req.Tools) > 0)
	return req
}

// extractToolCalls pulls tool_use blocks out of a completed (non-streamed)
// response's content array.
func extractToolCalls(blocks []wireContent) []conduit.ToolCall {
	var out []conduit.ToolCall
	for _, b := range blocks {
		if b.Type != "tool_use" {
			continue
		}
		raw, err := json.Marshal(b.Input)
		if err != nil {
			slog.Warn("anthropic: dropping tool_use with unmarshalable input", "tool", b.Name)
			continue
		}
		args, err := schema.Parse(raw)
		if err != nil {
			slog.Warn("anthropic: dropping tool_use with unparseable input", "tool", b.Name)
			continue
		}
		out = append(out, conduit.ToolCall{ID: b.ID, ToolName: b.Name, Arguments: args})
	}
	return out
}

func textOf(blocks []wireContent) string {
	var s string
	for _, b := range blocks {
		if b.Type == "text" {
			s += b.Text
		}
	}
	return s
}

func parseErrorBody(body []byte) string {
	var e wireErrorBody
	if err := json.Unmarshal(body, &e); err != nil || e.Error.Message == "" {
		return ""
	}
	return e.Error.Message
}

// finalizeStreamedArgs parses an accumulated tool-input JSON fragment,
// falling back to jsonrepair once before dropping it — the same
// graceful-finalization rule internal/sse.ToolCallAccumulators applies,
// duplicated here because Anthropic's tool_use arguments stream as
// input_json_delta fragments outside that accumulator's data shape.
func finalizeStreamedArgs(raw string) (schema.StructuredContent, bool) {
	if raw == "" {
		raw = "{}"
	}
	v, err := schema.Parse([]byte(raw))
	if err == nil {
		return v, true
	}
	repaired, err := jsonrepair.Repair(raw)
	if err != nil {
		return schema.StructuredContent{}, false
	}
	v, err = schema.Parse([]byte(repaired))
	if err != nil {
		return schema.StructuredContent{}, false
	}
	return v, true
}
