package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haasonsaas/conduit/internal/providers"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

func TestGenerateDecodesTextAndUsage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization header = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message":       map[string]any{"role": "assistant", "content": "hello there"},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{"prompt_tokens": 5, "completion_tokens": 3},
		})
	}))
	defer srv.Close()

	p, err := New(Config{Variant: VariantCustom, BaseURL: srv.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := p.Generate(context.Background(), []conduit.Message{conduit.UserMessage("hi")}, "gpt-4o", conduit.GenerateConfig{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Text != "hello there" {
		t.Fatalf("Text = %q", result.Text)
	}
	if result.Usage == nil || result.Usage.PromptTokens != 5 {
		t.Fatalf("Usage = %+v", result.Usage)
	}
	if result.FinishReason == nil || *result.FinishReason != conduit.FinishStop {
		t.Fatalf("FinishReason = %v", result.FinishReason)
	}
}

func TestGenerateExtractsToolCalls(t *testing.T) {
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

	p, err := New(Config{Variant: VariantCustom, BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := p.Generate(context.Background(), []conduit.Message{conduit.UserMessage("weather?")}, "gpt-4o", conduit.GenerateConfig{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.CompletedToolCalls) != 1 {
		t.Fatalf("CompletedToolCalls = %+v", result.CompletedToolCalls)
	}
	call := result.CompletedToolCalls[0]
	if call.ToolName != "get_weather" || call.ID != "call_1" {
		t.Fatalf("unexpected tool call: %+v", call)
	}
	city, err := call.Arguments.Field("city")
	if err != nil {
		t.Fatalf("Field(city): %v", err)
	}
	s, err := city.StringValue()
	if err != nil || s != "nyc" {
		t.Fatalf("city = %q, err=%v", s, err)
	}
}

func TestGenerateMapsAuthFailureStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "invalid api key"}})
	}))
	defer srv.Close()

	p, err := New(Config{Variant: VariantCustom, BaseURL: srv.URL, APIKey: "bad-key"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = p.Generate(context.Background(), []conduit.Message{conduit.UserMessage("hi")}, "gpt-4o", conduit.GenerateConfig{})
	if err == nil {
		t.Fatalf("expected error")
	}
	cerr, ok := err.(*conduit.Error)
	if !ok || cerr.Kind != conduit.ErrAuthenticationFailed {
		t.Fatalf("expected AuthenticationFailed, got %v", err)
	}
	if conduit.IsRetryable(err) {
		t.Fatalf("401 should not be retryable")
	}
}

func TestOllamaVariantNeedsNoAPIKey(t *testing.T) {
	t.Parallel()

	p, err := New(Config{Variant: VariantOllama, BaseURL: "http://localhost:11434/v1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !p.Availability().Available {
		t.Fatalf("ollama provider should be available without credentials")
	}
}

func TestCapabilitiesOnlyReportsEmbeddingsForOpenAIVariant(t *testing.T) {
	t.Parallel()

	openai, _ := New(Config{Variant: VariantOpenAI, APIKey: "k"})
	if !openai.Capabilities().Has(providers.CapEmbeddings) {
		t.Fatalf("openai variant should report embeddings capability")
	}

	custom, _ := New(Config{Variant: VariantCustom, BaseURL: "http://localhost", APIKey: "k"})
	if custom.Capabilities().Has(providers.CapEmbeddings) {
		t.Fatalf("custom variant should not report embeddings capability")
	}
}
