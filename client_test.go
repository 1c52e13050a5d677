package conduit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haasonsaas/conduit/internal/providers/openaicompat"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

func TestNewOpenAICompatClientGenerates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hi there"}, "finish_reason": "stop"},
			},
		})
	}))
	defer srv.Close()

	client, err := NewOpenAICompatClient(openaicompat.Config{Variant: openaicompat.VariantCustom, BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewOpenAICompatClient: %v", err)
	}
	if client.Name() != "custom" {
		t.Fatalf("Name() = %q", client.Name())
	}
	if !client.Available() {
		t.Fatal("client with an API key should be available")
	}

	result, err := client.Generate(context.Background(), []conduit.Message{conduit.UserMessage("hi")}, "gpt-4o", conduit.GenerateConfig{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Text != "hi there" {
		t.Fatalf("Text = %q", result.Text)
	}
}

func TestNewOpenAICompatClientStreams(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"he\"}}]}\n\n"))
		flusher.Flush()
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"llo\"},\"finish_reason\":\"stop\"}]}\n\n"))
		flusher.Flush()
		w.Write([]byte("data: [DONE]\n\n"))
		flusher.Flush()
	}))
	defer srv.Close()

	client, err := NewOpenAICompatClient(openaicompat.Config{Variant: openaicompat.VariantCustom, BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewOpenAICompatClient: %v", err)
	}

	chunks, err := client.Stream(context.Background(), []conduit.Message{conduit.UserMessage("hi")}, "gpt-4o", conduit.GenerateConfig{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var text string
	var sawComplete bool
	for chunk := range chunks {
		text += chunk.Text
		if chunk.IsComplete {
			sawComplete = true
		}
	}
	if text != "hello" {
		t.Fatalf("accumulated text = %q, want %q", text, "hello")
	}
	if !sawComplete {
		t.Fatal("expected a terminal IsComplete chunk")
	}
}
