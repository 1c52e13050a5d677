package anthropic

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

	req := buildRequest(messages, p.modelOrDefault(model), cfg, true)
	body, err := json.Marshal(req)
	if err != nil {
		return nil, conduit.GenerationFailed(err)
	}

	streamCtx, cancel := context.WithCancel(ctx)

	httpReq, err := http.NewRequestWithContext(streamCtx, "POST", p.endpoint(), bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, conduit.GenerationFailed(err)
	}
	for k, v := range p.headers() {
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

// toolBlock accumulates a tool_use content block's input_json_delta
// fragments across the stream, indexed by its content_block index.
type toolBlock struct {
	id, name string
	args     bytes.Buffer
}

func runStream(ctx context.Context, cancel context.CancelFunc, body io.ReadCloser, out chan<- conduit.GenerationChunk) {
	defer close(out)
	defer cancel()
	defer body.Close()

	throughput := &isse.Throughput{}
	tools := map[int]*toolBlock{}
	var toolOrder []int
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

	finalizeTools := func() []conduit.ToolCall {
		var calls []conduit.ToolCall
		for _, idx := range toolOrder {
			tb := tools[idx]
			args, ok := finalizeStreamedArgs(tb.args.String())
			if !ok {
				continue
			}
			calls = append(calls, conduit.ToolCall{ID: tb.id, ToolName: tb.name, Arguments: args})
		}
		return calls
	}

	var usage *wireUsage
	stopped := false

	dec := isse.NewDecoder(func(data string) (bool, error) {
		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return false, nil // malformed frame, skip per graceful-finalization rule
		}

		switch ev.Type {
		case "content_block_start":
			if ev.Index != nil && ev.ContentBlock != nil && ev.ContentBlock.Type == "tool_use" {
				tb := &toolBlock{id: ev.ContentBlock.ID, name: ev.ContentBlock.Name}
				tools[*ev.Index] = tb
				toolOrder = append(toolOrder, *ev.Index)
			}

		case "content_block_delta":
			if ev.Delta == nil {
				return false, nil
			}
			switch ev.Delta.Type {
			case "text_delta":
				rate := throughput.Record(len(ev.Delta.Text) / 4)
				if !send(conduit.GenerationChunk{
					Text:            ev.Delta.Text,
					TokensPerSecond: rate,
					Timestamp:       time.Now(),
				}) {
					return true, nil
				}
			case "input_json_delta":
				if ev.Index == nil {
					return false, nil
				}
				tb, ok := tools[*ev.Index]
				if !ok {
					return false, nil
				}
				tb.args.WriteString(ev.Delta.PartialJSON)
				if !send(conduit.GenerationChunk{
					PartialToolCall: &conduit.PartialToolCall{
						ID:                tb.id,
						ToolName:          tb.name,
						Index:             *ev.Index,
						ArgumentsFragment: tb.args.String(),
					},
					Timestamp: time.Now(),
				}) {
					return true, nil
				}
			}

		case "message_delta":
			if ev.Delta != nil && ev.Delta.StopReason != nil {
				fr := providers.MapFinishReason(*ev.Delta.StopReason)
				chunk := conduit.GenerationChunk{IsComplete: true, FinishReason: &fr, Timestamp: time.Now()}
				if len(toolOrder) > 0 {
					chunk.CompletedToolCalls = finalizeTools()
				}
				if ev.Usage != nil {
					usage = ev.Usage
					chunk.Usage = &conduit.Usage{PromptTokens: usage.InputTokens, CompletionTokens: usage.OutputTokens}
				}
				stopped = true
				send(chunk)
				return true, nil
			}

		case "message_stop":
			if !stopped {
				fr := conduit.FinishStop
				chunk := conduit.GenerationChunk{IsComplete: true, FinishReason: &fr, Timestamp: time.Now()}
				if len(toolOrder) > 0 {
					chunk.CompletedToolCalls = finalizeTools()
				}
				send(chunk)
			}
			return true, nil

		case "error":
			if ev.Error != nil {
				fr := conduit.FinishStop
				send(conduit.GenerationChunk{IsComplete: true, FinishReason: &fr, Timestamp: time.Now()})
			}
			return true, nil
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
