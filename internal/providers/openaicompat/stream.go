package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/haasonsaas/conduit/internal/providers"
	isse "github.com/haasonsaas/conduit/internal/sse"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

func (p *Provider) Stream(ctx context.Context, messages []conduit.Message, model string, cfg conduit.GenerateConfig) (<-chan conduit.GenerationChunk, error) {
	if err := providers.CheckCapability(p.Capabilities(), providers.CapStreaming, "streaming"); err != nil {
		return nil, err
	}

	req := buildRequest(messages, model, cfg, true)
	body, err := json.Marshal(req)
	if err != nil {
		return nil, conduit.GenerationFailed(err)
	}
	headers, err := p.headers(ctx)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)

	httpReq, err := http.NewRequestWithContext(streamCtx, "POST", p.endpoint(), bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, conduit.GenerationFailed(err)
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.cfg.httpClient().Do(httpReq)
	if err != nil {
		cancel()
		return nil, conduit.NetworkErrorKind(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		defer cancel()
		errBody, _ := io.ReadAll(resp.Body)
		msg := parseErrorBody(errBody)
		if msg == "" {
			msg = string(errBody)
		}
		return nil, providers.ClassifyStatus(resp.StatusCode, msg, nil)
	}

	out := make(chan conduit.GenerationChunk)
	go runStream(streamCtx, cancel, resp.Body, out)
	return out, nil
}

func runStream(ctx context.Context, cancel context.CancelFunc, body io.ReadCloser, out chan<- conduit.GenerationChunk) {
	defer close(out)
	defer cancel()
	defer body.Close()

	throughput := &isse.Throughput{}
	toolCalls := isse.NewToolCallAccumulators()
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

	dec := isse.NewDecoder(func(data string) (bool, error) {
		if data == "[DONE]" {
			return true, nil
		}
		var frame chatResponse
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			return false, nil // malformed frame, skip per graceful-finalization rule
		}
		if len(frame.Choices) == 0 {
			return false, nil
		}
		choice := frame.Choices[0]

		if choice.Delta.Content != "" {
			rate := throughput.Record(len(choice.Delta.Content) / 4)
			if !send(conduit.GenerationChunk{
				Text:            choice.Delta.Content,
				TokensPerSecond: rate,
				Timestamp:       time.Now(),
			}) {
				return true, nil
			}
		}

		for _, tc := range choice.Delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			frag, ok := toolCalls.Append(idx, tc.ID, tc.Function.Name, tc.Function.Arguments)
			if !ok {
				continue
			}
			if !send(conduit.GenerationChunk{
				PartialToolCall: &conduit.PartialToolCall{
					ID:                tc.ID,
					ToolName:          tc.Function.Name,
					Index:             idx,
					ArgumentsFragment: frag,
				},
				Timestamp: time.Now(),
			}) {
				return true, nil
			}
		}

		if choice.FinishReason != nil {
			fr := providers.MapFinishReason(*choice.FinishReason)
			chunk := conduit.GenerationChunk{
				IsComplete:   true,
				FinishReason: &fr,
				Timestamp:    time.Now(),
			}
			if !toolCalls.Empty() {
				chunk.CompletedToolCalls = toolCalls.Finalize()
			}
			if frame.Usage != nil {
				chunk.Usage = &conduit.Usage{
					PromptTokens:     frame.Usage.PromptTokens,
					CompletionTokens: frame.Usage.CompletionTokens,
				}
			}
			send(chunk)
		}
		return false, nil
	})

	buf := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			if !emittedAny {
				fr := conduit.FinishCancelled
				send(conduit.GenerationChunk{IsComplete: true, FinishReason: &fr, Timestamp: time.Now()})
			}
			return
		}
		n, err := body.Read(buf)
		if n > 0 {
			if decErr := dec.Write(buf[:n]); decErr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
