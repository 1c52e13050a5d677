package conduit

// Role is the speaker of a Message within a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ContentPartKind discriminates Message content parts.
type ContentPartKind int

const (
	ContentText ContentPartKind = iota
	ContentImage
)

// ContentPart is one piece of a multimodal message body.
type ContentPart struct {
	Kind ContentPartKind

	Text string // ContentText

	// ContentImage
	ImageBase64 string
	ImageURL    string
	MimeType    string
}

// TextPart constructs a text content part.
func TextPart(text string) ContentPart { return ContentPart{Kind: ContentText, Text: text} }

// ImageBase64Part constructs an inline base64-encoded image content part.
func ImageBase64Part(base64Data, mimeType string) ContentPart {
	return ContentPart{Kind: ContentImage, ImageBase64: base64Data, MimeType: mimeType}
}

// ImageURLPart constructs a remote-image content part.
func ImageURLPart(url, mimeType string) ContentPart {
	return ContentPart{Kind: ContentImage, ImageURL: url, MimeType: mimeType}
}

// Message is one turn of a conversation. Content is either a plain string
// (Text non-empty, Parts nil) or a sequence of multimodal parts.
type Message struct {
	Role Role

	Text  string
	Parts []ContentPart

	// Tool role messages only.
	ToolCallID string
	ToolName   string

	// Assistant role messages only — the tool calls this turn made, so a
	// provider can re-attach the following tool-role results to the turn
	// that requested them on the next request in a multi-turn tool loop.
	ToolCalls []ToolCall
}

// SystemMessage constructs a system-role text message.
func SystemMessage(text string) Message { return Message{Role: RoleSystem, Text: text} }

// UserMessage constructs a user-role text message.
func UserMessage(text string) Message { return Message{Role: RoleUser, Text: text} }

// UserMessageParts constructs a user-role multimodal message.
func UserMessageParts(parts ...ContentPart) Message {
	return Message{Role: RoleUser, Parts: parts}
}

// AssistantMessage constructs an assistant-role text message.
func AssistantMessage(text string) Message { return Message{Role: RoleAssistant, Text: text} }

// AssistantToolCallMessage constructs an assistant-role turn that made one
// or more tool calls, for appending to history ahead of the tool-role
// results that answer them.
func AssistantToolCallMessage(text string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Text: text, ToolCalls: calls}
}

// ToolMessage constructs a tool-role result message.
func ToolMessage(toolCallID, toolName, text string) Message {
	return Message{Role: RoleTool, Text: text, ToolCallID: toolCallID, ToolName: toolName}
}

// IsMultimodal reports whether the message carries structured content parts
// rather than a plain text body.
func (m Message) IsMultimodal() bool { return len(m.Parts) > 0 }
