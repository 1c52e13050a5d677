package huggingface

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

	req := generateRequest{Inputs: promptOf(messages), Parameters: buildParameters(cfg), Stream: true}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, conduit.GenerationFailed(err)
	}

	streamCtx, cancel := context.WithCancel(ctx)

	httpReq, err := http.NewRequestWithContext(streamCtx, "POST", p.cfg.endpoint(), bytes.NewReader(body))
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

func runStream(ctx context.Context, cancel context.CancelFunc, body io.ReadCloser, out chan<- conduit.GenerationChunk) {
	defer close(out)
	defer cancel()
	defer body.Close()

	throughput := &isse.Throughput{}
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
		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return false, nil
		}

		if !ev.Token.Special && ev.Token.Text != "" {
			rate := throughput.Record(len(ev.Token.Text) / 4)
			if !send(conduit.GenerationChunk{
				Text:            ev.Token.Text,
				TokensPerSecond: rate,
				Timestamp:       time.Now(),
			}) {
				return true, nil
			}
		}

		if ev.GeneratedText != nil {
			fr := conduit.FinishStop
			if ev.Details != nil {
				fr = mapFinishReason(ev.Details.FinishReason)
			}
			send(conduit.GenerationChunk{IsComplete: true, FinishReason: &fr, Timestamp: time.Now()})
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

func mapFinishReason(native string) conduit.FinishReason {
	switch native {
	case "eos_token", "stop_sequence":
		return conduit.FinishStop
	case "length":
		return conduit.FinishMaxTokens
	default:
		return conduit.FinishStop
	}
}
