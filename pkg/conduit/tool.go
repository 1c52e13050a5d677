package conduit

import "github.com/haasonsaas/conduit/pkg/schema"

// Tool is a named function an LLM may call, described by a JSON-Schema-like
// parameter Schema.
type Tool struct {
	Name        string
	Description string
	Parameters  schema.Schema
}

// ToolChoiceMode selects how a provider should pick among available tools.
type ToolChoiceMode int

const (
	ToolChoiceAuto ToolChoiceMode = iota
	ToolChoiceAny
	ToolChoiceNone
	ToolChoiceNamed
)

// ToolChoice constrains tool selection for a single request.
type ToolChoice struct {
	Mode ToolChoiceMode
	Name string // ToolChoiceNamed only
}

// AutoToolChoice lets the model decide whether and which tool to call.
func AutoToolChoice() ToolChoice { return ToolChoice{Mode: ToolChoiceAuto} }

// AnyToolChoice forces a tool call, model picks which.
func AnyToolChoice() ToolChoice { return ToolChoice{Mode: ToolChoiceAny} }

// NoToolChoice forbids tool calls for this request.
func NoToolChoice() ToolChoice { return ToolChoice{Mode: ToolChoiceNone} }

// NamedToolChoice forces a specific named tool call.
func NamedToolChoice(name string) ToolChoice { return ToolChoice{Mode: ToolChoiceNamed, Name: name} }

// ToolCall is a model-issued request to invoke a named tool.
type ToolCall struct {
	ID        string
	ToolName  string
	Arguments schema.StructuredContent
}

// PartialToolCall is an in-progress tool-call accumulation emitted as a
// provider streams argument fragments.
type PartialToolCall struct {
	ID                string
	ToolName          string
	Index             int
	ArgumentsFragment string
}
