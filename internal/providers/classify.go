package providers

import (
	"strings"
	"time"

	"github.com/haasonsaas/conduit/pkg/conduit"
)

// ClassifyStatus maps an HTTP status code plus a decoded provider error
// body into the closed error taxonomy (§4.3). body may be empty.
func ClassifyStatus(statusCode int, body string, retryAfter *time.Duration) *conduit.Error {
	switch {
	case statusCode == 400, statusCode == 404, statusCode == 413:
		return conduit.InvalidInput(body).WithStatus(statusCode)
	case statusCode == 401, statusCode == 403:
		return conduit.AuthenticationFailed(body).WithStatus(statusCode)
	case statusCode == 402:
		return conduit.New(conduit.ErrBilling, body).WithStatus(statusCode)
	case statusCode == 429:
		var d time.Duration
		if retryAfter != nil {
			d = *retryAfter
		}
		return conduit.RateLimited(d).WithStatus(statusCode)
	case statusCode == 504:
		return conduit.Timeout(0).WithStatus(statusCode)
	case statusCode >= 500:
		return conduit.ServerError(statusCode, body)
	default:
		return conduit.New(conduit.ErrGenerationFailed, body).WithStatus(statusCode)
	}
}

// ClassifyErrorText does best-effort substring classification when a
// provider error body carries no structured status/code, mirroring the
// teacher's ClassifyError fallback path for transport-level failures.
func ClassifyErrorText(err error) *conduit.Error {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "context deadline exceeded"), strings.Contains(lower, "timeout"):
		return conduit.Timeout(0).WithCause(err)
	case strings.Contains(lower, "rate limit"), strings.Contains(lower, "too many requests"):
		return conduit.RateLimited(0).WithCause(err)
	case strings.Contains(lower, "unauthorized"), strings.Contains(lower, "invalid api key"), strings.Contains(lower, "authentication"):
		return conduit.AuthenticationFailed(msg).WithCause(err)
	case strings.Contains(lower, "billing"), strings.Contains(lower, "quota"), strings.Contains(lower, "insufficient_quota"):
		return conduit.New(conduit.ErrBilling, msg).WithCause(err)
	case strings.Contains(lower, "content filter"), strings.Contains(lower, "content_filter"), strings.Contains(lower, "refusal"):
		return conduit.New(conduit.ErrGenerationFailed, msg).WithCause(err)
	case strings.Contains(lower, "model not found"), strings.Contains(lower, "model_not_found"):
		return conduit.InvalidInput(msg).WithCause(err)
	case strings.Contains(lower, "connection refused"), strings.Contains(lower, "no such host"),
		strings.Contains(lower, "connection reset"), strings.Contains(lower, "eof"):
		return conduit.NetworkErrorKind(err)
	default:
		return conduit.GenerationFailed(err)
	}
}

// MapFinishReason maps a provider-native stop-reason string to the closed
// FinishReason set, per the wire-protocol tables in §6.2.
func MapFinishReason(native string) conduit.FinishReason {
	switch native {
	case "stop", "end_turn":
		return conduit.FinishStop
	case "length", "max_tokens":
		return conduit.FinishMaxTokens
	case "stop_sequence":
		return conduit.FinishStopSequence
	case "tool_calls", "tool_use", "function_call":
		return conduit.FinishToolUse
	case "pause_turn":
		return conduit.FinishPauseTurn
	case "content_filter", "refusal":
		return conduit.FinishContentFilter
	default:
		return conduit.FinishStop
	}
}
