package conduit

import (
	"context"

	"github.com/haasonsaas/conduit/internal/toolexec"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

// ToolHandler executes one tool invocation's decoded arguments and
// returns its textual result, per toolexec.Handler.
type ToolHandler = toolexec.Handler

// ToolExecutor drives the generate-call-tools loop against a Client:
// register tools, then Execute runs messages through the model,
// invoking registered tools as they're called, until the model stops
// calling tools or the iteration cap is reached.
type ToolExecutor struct {
	exec *toolexec.Executor
}

// NewToolExecutor returns a ToolExecutor with no tools registered yet and
// toolexec.DefaultMaxIterations as its iteration cap.
func NewToolExecutor() *ToolExecutor {
	return &ToolExecutor{exec: toolexec.NewExecutor(toolexec.NewRegistry())}
}

// WithMaxIterations overrides the iteration cap (toolexec.DefaultMaxIterations
// otherwise).
func (t *ToolExecutor) WithMaxIterations(n int) *ToolExecutor {
	t.exec.MaxIterations = n
	return t
}

// Register adds or replaces a tool under tool.Name.
func (t *ToolExecutor) Register(tool conduit.Tool, handler ToolHandler) {
	t.exec.Registry.Register(tool, handler)
}

// Execute runs messages through client, invoking registered tools as the
// model calls them, and returns the final assistant text plus the full
// updated conversation history.
func (t *ToolExecutor) Execute(ctx context.Context, client *Client, messages []conduit.Message, model string, cfg conduit.GenerateConfig) (string, []conduit.Message, error) {
	return t.exec.Execute(ctx, client.provider, messages, model, cfg)
}
