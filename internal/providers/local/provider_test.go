package local

import (
	"context"
	"sync"
	"testing"

	"github.com/haasonsaas/conduit/pkg/conduit"
)

type fakeTokenStream struct {
	tokens []Token
	i      int
}

func (s *fakeTokenStream) Next(ctx context.Context) (Token, bool, error) {
	if s.i >= len(s.tokens) {
		return Token{IsFinal: true}, false, nil
	}
	tok := s.tokens[s.i]
	s.i++
	return tok, s.i < len(s.tokens), nil
}

type fakeContainer struct {
	prompts []string
}

func (c *fakeContainer) Perform(ctx context.Context, params Parameters, prompt string) (TokenStream, error) {
	c.prompts = append(c.prompts, prompt)
	return &fakeTokenStream{tokens: []Token{
		{Text: "hel"},
		{Text: "lo"},
		{Text: "", IsFinal: true},
	}}, nil
}

type fakeTokenizer struct{}

func (fakeTokenizer) Encode(text string) []int { return make([]int, len(text)) }
func (fakeTokenizer) Decode(ids []int) string  { return "" }

type fakeLoader struct {
	container *fakeContainer
}

func (l *fakeLoader) Load(ctx context.Context, modelID string) (ModelContainer, Tokenizer, error) {
	return l.container, fakeTokenizer{}, nil
}

func TestGenerateCollectsFullText(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{container: &fakeContainer{}}
	p, err := New(Config{Loader: loader, DefaultModel: "test-model"})
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

func TestSingleUserMessageBypassesRoleFormatting(t *testing.T) {
	t.Parallel()

	container := &fakeContainer{}
	loader := &fakeLoader{container: container}
	p, err := New(Config{Loader: loader, DefaultModel: "test-model"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = p.Generate(context.Background(), []conduit.Message{conduit.UserMessage("just the prompt")}, "", conduit.GenerateConfig{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(container.prompts) != 1 || container.prompts[0] != "just the prompt" {
		t.Fatalf("prompt = %q, want raw bypass", container.prompts)
	}
}

func TestMultiTurnConversationGetsRoleMarkers(t *testing.T) {
	t.Parallel()

	container := &fakeContainer{}
	loader := &fakeLoader{container: container}
	p, err := New(Config{Loader: loader, DefaultModel: "test-model"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	messages := []conduit.Message{
		conduit.SystemMessage("be terse"),
		conduit.UserMessage("hi"),
		conduit.AssistantMessage("hello"),
		conduit.UserMessage("how are you"),
	}
	_, err = p.Generate(context.Background(), messages, "", conduit.GenerateConfig{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	prompt := container.prompts[0]
	if prompt == "how are you" {
		t.Fatalf("expected role-marked prompt, got raw bypass")
	}
}

func TestCountTokensUsesEngineTokenizer(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{container: &fakeContainer{}}
	p, err := New(Config{Loader: loader, DefaultModel: "test-model"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	count, err := p.CountTokens(context.Background(), "", []conduit.Message{conduit.UserMessage("hi")})
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if count != 4+2 {
		t.Fatalf("count = %d, want 6", count)
	}
}

func TestGPULimitAppliedOnce(t *testing.T) {
	gpuLimitOnce = sync.Once{}
	gpuLimitApplied = 0

	loader := &fakeLoader{container: &fakeContainer{}}
	if _, err := New(Config{Loader: loader, GPUMemoryLimitBytes: 1024}); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := New(Config{Loader: loader, GPUMemoryLimitBytes: 2048}); err != nil {
		t.Fatalf("New: %v", err)
	}
	if gpuLimitApplied != 1024 {
		t.Fatalf("gpuLimitApplied = %d, want 1024 (first caller wins)", gpuLimitApplied)
	}
}
