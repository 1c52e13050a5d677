package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/haasonsaas/conduit/pkg/conduit"
)

func TestGenerateDecodesFirstResponseItem(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode([]generateResponseItem{{GeneratedText: "hello"}})
	}))
	defer srv.Close()

	p, err := New(Config{Repo: "org/model", APIKey: "test-token", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := p.Generate(context.Background(), []conduit.Message{conduit.UserMessage("hi")}, "", conduit.GenerateConfig{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Text != "hello" {
		t.Fatalf("Text = %q, want hello", result.Text)
	}
}

func TestEmbedDecodesVectors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([][]float64{{0.1, 0.2}, {0.3, 0.4}})
	}))
	defer srv.Close()

	p, err := New(Config{Repo: "org/embed-model", APIKey: "test-token", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	vectors, err := p.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != 2 || len(vectors[0]) != 2 {
		t.Fatalf("vectors = %+v", vectors)
	}
}

func TestGenerateImageReturnsRawBytes(t *testing.T) {
	t.Parallel()

	want := []byte{0xFF, 0xD8, 0xFF, 0x00}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(want)
	}))
	defer srv.Close()

	p, err := New(Config{Repo: "org/image-model", APIKey: "test-token", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := p.GenerateImage(context.Background(), "a cat")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d bytes, want %d", len(got), len(want))
	}
}

func TestPromptOfUsesRoleMarkers(t *testing.T) {
	t.Parallel()

	messages := []conduit.Message{
		conduit.SystemMessage("be terse"),
		conduit.UserMessage("hi"),
	}
	prompt := promptOf(messages)
	if prompt == "" {
		t.Fatalf("prompt is empty")
	}
	for _, want := range []string{"System: be terse", "User: hi", "Assistant: "} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt %q missing %q", prompt, want)
		}
	}
}
