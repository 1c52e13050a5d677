package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/haasonsaas/conduit/internal/providers"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

// Embed calls a feature-extraction repo and returns one embedding vector
// per input text, in input order.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if err := providers.CheckCapability(p.Capabilities(), providers.CapEmbeddings, "embeddings"); err != nil {
		return nil, err
	}

	body, err := json.Marshal(struct {
		Inputs []string `json:"inputs"`
	}{Inputs: texts})
	if err != nil {
		return nil, conduit.GenerationFailed(err)
	}

	resp, err := providers.Execute(ctx, p.cfg.httpClient(), providers.Request{
		Method:  "POST",
		URL:     p.cfg.endpoint(),
		Headers: p.headers(),
		Body:    body,
	}, conduit.DefaultMaxRetries, parseErrorBody)
	if err != nil {
		return nil, err
	}

	var vectors [][]float64
	if err := json.Unmarshal(resp.Body, &vectors); err != nil {
		return nil, conduit.GenerationFailed(err)
	}
	return vectors, nil
}

// Transcribe submits raw audio bytes (binary body, matching-mimetype
// Content-Type) to an automatic-speech-recognition repo.
func (p *Provider) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if err := providers.CheckCapability(p.Capabilities(), providers.CapTranscription, "transcription"); err != nil {
		return "", err
	}

	headers := p.headers()
	headers["Content-Type"] = mimeType

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.cfg.endpoint(), bytes.NewReader(audio))
	if err != nil {
		return "", conduit.GenerationFailed(err)
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := p.cfg.httpClient().Do(httpReq)
	if err != nil {
		return "", conduit.NetworkErrorKind(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", conduit.NetworkErrorKind(err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		msg := parseErrorBody(respBody)
		if msg == "" {
			msg = string(respBody)
		}
		return "", providers.ClassifyStatus(httpResp.StatusCode, msg, nil)
	}

	var decoded struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", conduit.GenerationFailed(err)
	}
	return decoded.Text, nil
}

// GenerateImage submits a text-to-image prompt and returns the raw image
// bytes the Inference API responds with — there is no JSON envelope for
// this task, the response body itself is the image.
func (p *Provider) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if err := providers.CheckCapability(p.Capabilities(), providers.CapImageGen, "image generation"); err != nil {
		return nil, err
	}

	body, err := json.Marshal(struct {
		Inputs string `json:"inputs"`
	}{Inputs: prompt})
	if err != nil {
		return nil, conduit.GenerationFailed(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.cfg.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, conduit.GenerationFailed(err)
	}
	for k, v := range p.headers() {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := p.cfg.httpClient().Do(httpReq)
	if err != nil {
		return nil, conduit.NetworkErrorKind(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, conduit.NetworkErrorKind(err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		msg := parseErrorBody(respBody)
		if msg == "" {
			msg = string(respBody)
		}
		return nil, providers.ClassifyStatus(httpResp.StatusCode, msg, nil)
	}
	if len(respBody) == 0 {
		return nil, conduit.GenerationFailed(fmt.Errorf("huggingface: empty image response"))
	}
	return respBody, nil
}
