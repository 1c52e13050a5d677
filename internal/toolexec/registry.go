// Package toolexec drives the multi-turn generate-call-tools loop: run a
// provider's Generate with tools enabled, invoke every tool call the
// model made concurrently, append the results as history, and repeat
// until the model stops calling tools or an iteration cap is hit.
package toolexec

import (
	"context"
	"fmt"
	"sync"

	"github.com/haasonsaas/conduit/pkg/conduit"
	"github.com/haasonsaas/conduit/pkg/schema"
)

// Handler executes one tool invocation's decoded arguments and returns
// its textual result.
type Handler func(ctx context.Context, args schema.StructuredContent) (string, error)

// registeredTool pairs a Tool descriptor (for the wire schema) with its
// Handler.
type registeredTool struct {
	tool    conduit.Tool
	handler Handler
}

// Registry is a name -> tool lookup, safe for concurrent registration and
// lookup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]registeredTool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]registeredTool)}
}

// Register adds or replaces a tool under tool.Name.
func (r *Registry) Register(tool conduit.Tool, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name] = registeredTool{tool: tool, handler: handler}
}

// Tools returns the registered tool descriptors, for passing to
// GenerateConfig.WithTools.
func (r *Registry) Tools() []conduit.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]conduit.Tool, 0, len(r.tools))
	for _, rt := range r.tools {
		out = append(out, rt.tool)
	}
	return out
}

func (r *Registry) lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return rt.handler, true
}

// ToolError is returned through the tool-role message when a registered
// handler fails — it never terminates the loop by itself.
type ToolError struct {
	Tool      string
	Underlying error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q execution failed: %v", e.Tool, e.Underlying)
}

func (e *ToolError) Unwrap() error { return e.Underlying }
