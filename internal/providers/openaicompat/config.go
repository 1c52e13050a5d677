// Package openaicompat implements the shared OpenAI-compatible Chat
// Completions client used to front OpenAI, OpenRouter, Ollama, Azure, and
// custom endpoints, per §6.2.1.
package openaicompat

import (
	"net/http"
	"time"

	"github.com/haasonsaas/conduit/internal/providers"
)

// Variant names the concrete backend being fronted, selecting header and
// auth conventions that differ from plain OpenAI.
type Variant int

const (
	VariantOpenAI Variant = iota
	VariantOpenRouter
	VariantOllama
	VariantAzure
	VariantCustom
)

// Config configures an openaicompat provider instance.
type Config struct {
	Variant Variant

	// BaseURL is the Chat Completions endpoint root, e.g.
	// "https://api.openai.com/v1". Required for Azure/custom; defaults
	// are applied for OpenAI/OpenRouter/Ollama (localhost:11434) if empty.
	BaseURL string

	APIKey string // explicit key; falls back to EnvVar lookup if empty
	EnvVar string

	// OpenRouter-specific routing headers.
	HTTPReferer string
	XTitle      string

	// Azure-specific.
	AzureDeployment  string
	AzureAPIVersion  string
	AzureADToken     string // bearer token, takes precedence over APIKey when set
	AzureADTokenFunc func() (string, error)

	DefaultModel string
	HTTPClient   *http.Client
}

func (c Config) defaultBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	switch c.Variant {
	case VariantOpenAI:
		return "https://api.openai.com/v1"
	case VariantOpenRouter:
		return "https://openrouter.ai/api/v1"
	case VariantOllama:
		return "http://localhost:11434/v1"
	default:
		return ""
	}
}

func (c Config) authConfig() providers.AuthConfig {
	if c.Variant == VariantOllama || (c.Variant == VariantCustom && c.APIKey == "" && c.EnvVar == "") {
		return providers.AuthConfig{Mode: providers.AuthNone}
	}
	if c.APIKey != "" {
		return providers.AuthConfig{Mode: providers.AuthExplicitKey, Key: c.APIKey}
	}
	envVar := c.EnvVar
	if envVar == "" {
		envVar = defaultEnvVar(c.Variant)
	}
	return providers.AuthConfig{Mode: providers.AuthEnvVar, EnvVar: envVar}
}

func defaultEnvVar(v Variant) string {
	switch v {
	case VariantOpenRouter:
		return "OPENROUTER_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 0} // per-request timeout is applied via context
}

func (c Config) variantName() string {
	switch c.Variant {
	case VariantOpenAI:
		return "openai"
	case VariantOpenRouter:
		return "openrouter"
	case VariantOllama:
		return "ollama"
	case VariantAzure:
		return "azure"
	default:
		return "custom"
	}
}

const defaultTimeout = 60 * time.Second
