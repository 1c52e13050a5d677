// Package huggingface fronts the HuggingFace Inference API. Unlike the
// other two backends, there is no single dialect: the request/response
// body shape depends on the task (text-generation, feature-extraction for
// embeddings, automatic-speech-recognition for transcription,
// text-to-image), and the endpoint is per-model rather than per-provider.
package huggingface

import (
	"net/http"
	"time"

	"github.com/haasonsaas/conduit/internal/providers"
)

const (
	defaultBaseURL        = "https://api-inference.huggingface.co/models"
	defaultRequestTimeout = 120 * time.Second
)

// Config configures a Provider instance bound to a single model repo
// (e.g. "meta-llama/Llama-3.1-8B-Instruct"). A HuggingFace Inference
// endpoint is per-model, so unlike Anthropic/OpenAI-compatible, the model
// to call is fixed at construction rather than passed per-request — the
// model argument to Generate/Stream is ignored.
type Config struct {
	Repo string

	APIKey string
	EnvVar string // default HF_TOKEN

	BaseURL string

	HTTPClient *http.Client
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c Config) endpoint() string {
	return c.baseURL() + "/" + c.Repo
}

func (c Config) authConfig() providers.AuthConfig {
	envVar := c.EnvVar
	if envVar == "" {
		envVar = "HF_TOKEN"
	}
	if c.APIKey != "" {
		return providers.AuthConfig{Mode: providers.AuthExplicitKey, Key: c.APIKey}
	}
	return providers.AuthConfig{Mode: providers.AuthEnvVar, EnvVar: envVar}
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultRequestTimeout}
}
