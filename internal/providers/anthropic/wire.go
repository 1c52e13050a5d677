package anthropic

// Wire types for the Anthropic Messages API (§6.2.2). System prompt is a
// top-level field, never a message — unlike the OpenAI dialect.

type messageRequest struct {
	Model       string          `json:"model"`
	Messages    []wireMessage   `json:"messages"`
	System      []textBlock     `json:"system,omitempty"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
	TopP        *float64        `json:"top_p,omitempty"`
	TopK        *int            `json:"top_k,omitempty"`
	StopSequences []string      `json:"stop_sequences,omitempty"`
	Tools       []wireTool      `json:"tools,omitempty"`
	ToolChoice  any             `json:"tool_choice,omitempty"`
	Stream      bool            `json:"stream,omitempty"`
}

type textBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type wireMessage struct {
	Role    string       `json:"role"`
	Content []wireContent `json:"content"`
}

// wireContent is a tagged union over text / image / tool_use / tool_result
// blocks, flattened to one struct for marshal/unmarshal simplicity.
type wireContent struct {
	Type string `json:"type"`

	Text string `json:"text,omitempty"`

	Source *imageSource `json:"source,omitempty"`

	ID    string `json:"id,omitempty"`    // tool_use
	Name  string `json:"name,omitempty"`  // tool_use
	Input any    `json:"input,omitempty"` // tool_use

	ToolUseID string `json:"tool_use_id,omitempty"` // tool_result
	Content   string `json:"content,omitempty"`     // tool_result (string form)
	IsError   bool   `json:"is_error,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

type wireTool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema any    `json:"input_schema"`
}

type messageResponse struct {
	ID         string          `json:"id"`
	Role       string          `json:"role"`
	Content    []wireContent   `json:"content"`
	Model      string          `json:"model"`
	StopReason *string         `json:"stop_reason"`
	Usage      *wireUsage      `json:"usage"`
}

type wireUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type wireErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Streaming event envelope — the `type` field selects which of the
// optional sub-fields is populated.
type streamEvent struct {
	Type string `json:"type"`

	Message *messageResponse `json:"message,omitempty"` // message_start

	Index        *int          `json:"index,omitempty"`
	ContentBlock *wireContent  `json:"content_block,omitempty"` // content_block_start
	Delta        *streamDelta  `json:"delta,omitempty"`         // content_block_delta / message_delta

	Usage *wireUsage `json:"usage,omitempty"` // message_delta

	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// streamDelta covers both content_block_delta (text_delta / input_json_delta)
// and message_delta (stop_reason) shapes.
type streamDelta struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	StopReason  *string `json:"stop_reason,omitempty"`
}
