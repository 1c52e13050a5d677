package conduit

import "time"

// ServiceTier selects a provider's latency/cost tier, where supported.
type ServiceTier int

const (
	ServiceTierAuto ServiceTier = iota
	ServiceTierStandardOnly
)

// GenerateConfig holds the recognised, all-optional generation options.
// Zero-value fields are omitted from the wire request: a provider must
// never send a default that would override the server's own default.
type GenerateConfig struct {
	Temperature       *float64
	TopP              *float64
	TopK              *int
	MaxTokens         *int
	RepetitionPenalty *float64
	StopSequences     []string
	UserID            string
	ServiceTier       *ServiceTier
	Tools             []Tool
	ToolChoice        *ToolChoice

	// Timeout overrides the per-request deadline (default 60s, long-running
	// preset 120s per the concurrency model).
	Timeout time.Duration

	// MaxRetries overrides the executor's retry budget.
	MaxRetries int
}

// DefaultTimeout is applied when GenerateConfig.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// LongRunningTimeout is the preset for latency-tolerant requests.
const LongRunningTimeout = 120 * time.Second

// DefaultMaxRetries is applied when GenerateConfig.MaxRetries is zero.
const DefaultMaxRetries = 3

// EffectiveTimeout returns c.Timeout, or DefaultTimeout if unset.
func (c GenerateConfig) EffectiveTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// EffectiveMaxRetries returns c.MaxRetries, or DefaultMaxRetries if unset.
func (c GenerateConfig) EffectiveMaxRetries() int {
	if c.MaxRetries <= 0 {
		return DefaultMaxRetries
	}
	return c.MaxRetries
}

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }

// WithTemperature returns a copy of c with Temperature set.
func (c GenerateConfig) WithTemperature(v float64) GenerateConfig {
	c.Temperature = float64Ptr(v)
	return c
}

// WithMaxTokens returns a copy of c with MaxTokens set.
func (c GenerateConfig) WithMaxTokens(v int) GenerateConfig {
	c.MaxTokens = intPtr(v)
	return c
}

// WithTools returns a copy of c with Tools and an auto ToolChoice set.
func (c GenerateConfig) WithTools(tools ...Tool) GenerateConfig {
	c.Tools = tools
	if c.ToolChoice == nil {
		tc := AutoToolChoice()
		c.ToolChoice = &tc
	}
	return c
}
