package conduit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haasonsaas/conduit/internal/providers/openaicompat"
	"github.com/haasonsaas/conduit/pkg/conduit"
	"github.com/haasonsaas/conduit/pkg/schema"
)

func weatherTool() conduit.Tool {
	return conduit.Tool{
		Name:        "get_weather",
		Description: "get the weather for a city",
		Parameters:  schema.ObjectSchema("weather_args", "weather tool arguments", nil),
	}
}

func TestToolExecutorRunsToolThenReturnsFinalText(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{
						"message": map[string]any{
							"role": "assistant",
							"tool_calls": []map[string]any{
								{
									"id":   "call_1",
									"type": "function",
									"function": map[string]any{
										"name":      "get_weather",
										"arguments": `{"city":"nyc"}`,
									},
								},
							},
						},
						"finish_reason": "tool_calls",
					},
				},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "it's sunny in nyc"}, "finish_reason": "stop"},
			},
		})
	}))
	defer srv.Close()

	client, err := NewOpenAICompatClient(openaicompat.Config{Variant: openaicompat.VariantCustom, BaseURL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	executor := NewToolExecutor()
	var handlerCalled bool
	executor.Register(weatherTool(), func(ctx context.Context, args schema.StructuredContent) (string, error) {
		handlerCalled = true
		city, _ := args.Field("city")
		s, _ := city.StringValue()
		return "sunny in " + s, nil
	})

	text, history, err := executor.Execute(context.Background(), client, []conduit.Message{conduit.UserMessage("weather?")}, "gpt-4o", conduit.GenerateConfig{})
	require.NoError(t, err)
	assert.True(t, handlerCalled, "tool handler was not invoked")
	assert.Equal(t, "it's sunny in nyc", text)
	require.Len(t, history, 3)
	assert.Equal(t, conduit.RoleTool, history[2].Role)
	assert.Equal(t, "call_1", history[2].ToolCallID)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestToolExecutorWithMaxIterationsFailsWhenAlwaysCalling(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message": map[string]any{
						"role": "assistant",
						"tool_calls": []map[string]any{
							{
								"id":   "call_1",
								"type": "function",
								"function": map[string]any{
									"name":      "get_weather",
									"arguments": `{"city":"nyc"}`,
								},
							},
						},
					},
					"finish_reason": "tool_calls",
				},
			},
		})
	}))
	defer srv.Close()

	client, err := NewOpenAICompatClient(openaicompat.Config{Variant: openaicompat.VariantCustom, BaseURL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	executor := NewToolExecutor().WithMaxIterations(2)
	executor.Register(weatherTool(), func(ctx context.Context, args schema.StructuredContent) (string, error) {
		return "sunny", nil
	})

	_, _, err = executor.Execute(context.Background(), client, []conduit.Message{conduit.UserMessage("weather?")}, "gpt-4o", conduit.GenerateConfig{})
	assert.Error(t, err, "expected an error after exceeding the iteration cap")
}
