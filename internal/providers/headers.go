package providers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/haasonsaas/conduit/pkg/conduit"
)

// ExtractRateLimitInfo reads the common rate-limit headers shared across
// the wire protocols. Missing fields are left nil, never zero-valued.
func ExtractRateLimitInfo(h http.Header) *conduit.RateLimitInfo {
	info := &conduit.RateLimitInfo{
		RequestID:      firstNonEmpty(h.Get("request-id"), h.Get("x-request-id")),
		OrganizationID: h.Get("anthropic-organization-id"),
	}

	info.LimitRequests = headerInt(h, "RateLimit-Limit-Requests")
	info.LimitTokens = headerInt(h, "RateLimit-Limit-Tokens")
	info.RemainingRequests = headerInt(h, "RateLimit-Remaining-Requests")
	info.RemainingTokens = headerInt(h, "RateLimit-Remaining-Tokens")
	info.ResetRequests = headerTime(h, "RateLimit-Reset-Requests")
	info.ResetTokens = headerTime(h, "RateLimit-Reset-Tokens")

	if d, ok := RetryAfter(h); ok {
		info.RetryAfter = &d
	}

	if info.RequestID == "" && info.OrganizationID == "" && info.LimitRequests == nil &&
		info.LimitTokens == nil && info.RemainingRequests == nil && info.RemainingTokens == nil &&
		info.ResetRequests == nil && info.ResetTokens == nil && info.RetryAfter == nil {
		return nil
	}
	return info
}

// RetryAfter parses the Retry-After header as a duration in seconds, per
// §4.4: "if a Retry-After header is present, use its value (seconds) as
// the sleep".
func RetryAfter(h http.Header) (time.Duration, bool) {
	v := h.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

func headerInt(h http.Header, key string) *int {
	v := h.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func headerTime(h http.Header, key string) *time.Time {
	v := h.Get(key)
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	return &t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
