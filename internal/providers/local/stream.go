package local

import (
	"context"
	"time"

	"github.com/haasonsaas/conduit/internal/providers"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

func (p *Provider) Stream(ctx context.Context, messages []conduit.Message, model string, cfg conduit.GenerateConfig) (<-chan conduit.GenerationChunk, error) {
	if err := providers.CheckCapability(p.Capabilities(), providers.CapStreaming, "streaming"); err != nil {
		return nil, err
	}

	container, _, err := p.cfg.Loader.Load(ctx, p.modelOrDefault(model))
	if err != nil {
		return nil, wrapLoadError(err)
	}

	prompt := buildPrompt(messages)
	params := buildParameters(cfg)

	tokenStream, err := container.Perform(ctx, params, prompt)
	if err != nil {
		return nil, conduit.GenerationFailed(err)
	}

	out := make(chan conduit.GenerationChunk)
	go runStream(ctx, tokenStream, out)
	return out, nil
}

func runStream(ctx context.Context, stream TokenStream, out chan<- conduit.GenerationChunk) {
	defer close(out)

	start := time.Now()
	tokenCount := 0
	emittedAny := false

	send := func(c conduit.GenerationChunk) bool {
		select {
		case out <- c:
			emittedAny = true
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		if ctx.Err() != nil {
			fr := conduit.FinishCancelled
			send(conduit.GenerationChunk{IsComplete: true, FinishReason: &fr, Timestamp: time.Now()})
			return
		}

		tok, more, err := stream.Next(ctx)
		if err != nil {
			fr := conduit.FinishStop
			send(conduit.GenerationChunk{IsComplete: true, FinishReason: &fr, Timestamp: time.Now()})
			return
		}

		if tok.Text != "" {
			tokenCount++
			var rate *float64
			if secs := time.Since(start).Seconds(); secs > 0 {
				r := float64(tokenCount) / secs
				rate = &r
			}
			if !send(conduit.GenerationChunk{Text: tok.Text, TokensPerSecond: rate, Timestamp: time.Now()}) {
				return
			}
		}

		if !more || tok.IsFinal {
			fr := conduit.FinishStop
			if tok.StopWord != "" {
				fr = conduit.FinishStopSequence
			}
			send(conduit.GenerationChunk{IsComplete: true, FinishReason: &fr, Timestamp: time.Now()})
			return
		}
	}
}
