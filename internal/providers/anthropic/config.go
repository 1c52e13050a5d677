// Package anthropic fronts the Anthropic Messages API.
//
// As in openaicompat, both the request/response shapes and the SSE event
// handling are hand-rolled against the documented protocol — the same
// net/http + internal/sse architecture openaicompat uses, so the two
// backends fail and retry in exactly the same way from the caller's point
// of view.
package anthropic

import (
	"net/http"
	"time"

	"github.com/haasonsaas/conduit/internal/providers"
)

const (
	defaultBaseURL       = "https://api.anthropic.com"
	defaultAPIVersion    = "2023-06-01"
	defaultModel         = "claude-3-5-sonnet-20241022"
	defaultMaxTokens     = 4096
	defaultRequestTimeout = 120 * time.Second
)

// Config configures a Provider instance.
type Config struct {
	// APIKey is read directly if set; otherwise EnvVar (default
	// ANTHROPIC_API_KEY) is consulted at construction time.
	APIKey string
	EnvVar string

	BaseURL      string
	APIVersion   string
	DefaultModel string

	HTTPClient *http.Client
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c Config) apiVersion() string {
	if c.APIVersion != "" {
		return c.APIVersion
	}
	return defaultAPIVersion
}

func (c Config) model() string {
	if c.DefaultModel != "" {
		return c.DefaultModel
	}
	return defaultModel
}

func (c Config) authConfig() providers.AuthConfig {
	envVar := c.EnvVar
	if envVar == "" {
		envVar = "ANTHROPIC_API_KEY"
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
