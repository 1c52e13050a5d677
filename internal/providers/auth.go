package providers

import (
	"os"

	"github.com/haasonsaas/conduit/pkg/conduit"
)

// AuthMode discriminates how a provider resolves its credential.
type AuthMode int

const (
	// AuthExplicitKey uses a key provided directly to the constructor.
	AuthExplicitKey AuthMode = iota
	// AuthEnvVar reads a well-known environment variable.
	AuthEnvVar
	// AuthNone is for local/self-hosted backends that need no credential.
	AuthNone
)

// AuthConfig describes how to resolve a provider's API key.
type AuthConfig struct {
	Mode   AuthMode
	Key    string // AuthExplicitKey
	EnvVar string // AuthEnvVar
}

// ResolveKey resolves AuthConfig to a concrete key, failing early with
// AuthenticationFailed if a key is required and none is available. Never
// logs or returns the key wrapped in any serializable structure besides
// the returned string itself.
func ResolveKey(cfg AuthConfig) (string, error) {
	switch cfg.Mode {
	case AuthNone:
		return "", nil
	case AuthExplicitKey:
		if cfg.Key == "" {
			return "", conduit.AuthenticationFailed("no API key configured")
		}
		return cfg.Key, nil
	case AuthEnvVar:
		if cfg.Key != "" {
			return cfg.Key, nil
		}
		v := os.Getenv(cfg.EnvVar)
		if v == "" {
			return "", conduit.AuthenticationFailed("environment variable " + cfg.EnvVar + " is not set")
		}
		return v, nil
	default:
		return "", conduit.AuthenticationFailed("unknown auth mode")
	}
}
