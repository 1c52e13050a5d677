package toolexec

import (
	"context"
	"fmt"
	"sync"

	"github.com/haasonsaas/conduit/internal/providers"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

// DefaultMaxIterations is applied when Executor.MaxIterations is zero.
const DefaultMaxIterations = 10

// Executor drives the generate-call-tools loop against one provider.
type Executor struct {
	Registry      *Registry
	MaxIterations int
}

// NewExecutor returns an Executor with DefaultMaxIterations.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{Registry: registry, MaxIterations: DefaultMaxIterations}
}

func (e *Executor) maxIterations() int {
	if e.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return e.MaxIterations
}

// Execute runs messages through provider, invoking registered tools as
// the model calls them, until the model stops calling tools or the
// iteration cap is reached. It returns the final assistant text and the
// full updated history (including every assistant/tool turn appended
// along the way).
func (e *Executor) Execute(ctx context.Context, provider providers.AIProvider, messages []conduit.Message, model string, cfg conduit.GenerateConfig) (string, []conduit.Message, error) {
	history := append([]conduit.Message(nil), messages...)
	cfg = cfg.WithTools(e.Registry.Tools()...)

	for iteration := 0; iteration < e.maxIterations(); iteration++ {
		result, err := provider.Generate(ctx, history, model, cfg)
		if err != nil {
			return "", history, err
		}

		if len(result.CompletedToolCalls) == 0 {
			return result.Text, history, nil
		}

		history = append(history, conduit.AssistantToolCallMessage(result.Text, result.CompletedToolCalls))

		toolMessages := e.runToolCalls(ctx, result.CompletedToolCalls)
		history = append(history, toolMessages...)
	}

	return "", history, conduit.GenerationFailed(fmt.Errorf("toolexec: exceeded %d iterations", e.maxIterations()))
}

// runToolCalls invokes every tool call concurrently and returns their
// tool-role result messages in the same ascending index order the calls
// arrived in, for reproducible history regardless of completion order.
func (e *Executor) runToolCalls(ctx context.Context, calls []conduit.ToolCall) []conduit.Message {
	results := make([]conduit.Message, len(calls))
	var wg sync.WaitGroup

	for i, call := range calls {
		wg.Add(1)
		go func(idx int, call conduit.ToolCall) {
			defer wg.Done()
			results[idx] = e.invokeOne(ctx, call)
		}(i, call)
	}

	wg.Wait()
	return results
}

func (e *Executor) invokeOne(ctx context.Context, call conduit.ToolCall) conduit.Message {
	handler, ok := e.Registry.lookup(call.ToolName)
	if !ok {
		err := &ToolError{Tool: call.ToolName, Underlying: fmt.Errorf("no handler registered")}
		return conduit.ToolMessage(call.ID, call.ToolName, err.Error())
	}

	text, err := handler(ctx, call.Arguments)
	if err != nil {
		toolErr := &ToolError{Tool: call.ToolName, Underlying: err}
		return conduit.ToolMessage(call.ID, call.ToolName, toolErr.Error())
	}
	return conduit.ToolMessage(call.ID, call.ToolName, text)
}
