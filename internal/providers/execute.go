package providers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/haasonsaas/conduit/internal/backoff"
	"github.com/haasonsaas/conduit/pkg/conduit"
)

// Request is a fully-built HTTP request, independent of the provider that
// built it: method, URL, headers, and a serialized body.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response is a decoded HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// ErrorBodyParser extracts a human-readable message from a non-2xx
// response body, per the provider's own wire error shape.
type ErrorBodyParser func(body []byte) string

// Execute performs req with retry per §4.4: attempts 0..=maxRetries,
// exponential backoff per backoff.DefaultPolicy (or the server's
// Retry-After for 429s), and uniform error-taxonomy mapping. client is any
// *http.Client-shaped transport; it is injected so tests can substitute a
// fake one.
func Execute(ctx context.Context, client *http.Client, req Request, maxRetries int, parseErrorBody ErrorBodyParser) (Response, error) {
	var lastErr *conduit.Error
	policy := backoff.DefaultPolicy()

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return Response{}, conduit.Cancelled().WithCause(err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
		if err != nil {
			return Response{}, conduit.GenerationFailed(err)
		}
		for k, v := range req.Headers {
			httpReq.Header.Set(k, v)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return Response{}, conduit.Cancelled().WithCause(ctx.Err())
			}
			lastErr = conduit.NetworkErrorKind(err)
			if attempt < maxRetries {
				if sleepErr := backoff.Sleep(ctx, backoff.Compute(policy, attempt)); sleepErr != nil {
					return Response{}, conduit.Cancelled().WithCause(sleepErr)
				}
				continue
			}
			break
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = conduit.NetworkErrorKind(readErr)
			if attempt < maxRetries {
				if sleepErr := backoff.Sleep(ctx, backoff.Compute(policy, attempt)); sleepErr != nil {
					return Response{}, conduit.Cancelled().WithCause(sleepErr)
				}
				continue
			}
			break
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return Response{StatusCode: resp.StatusCode, Headers: resp.Header, Body: body}, nil
		}

		errMsg := ""
		if parseErrorBody != nil {
			errMsg = parseErrorBody(body)
		}
		if errMsg == "" {
			errMsg = string(body)
		}

		if resp.StatusCode == 429 {
			sleepFor := backoff.Compute(policy, attempt)
			var retryAfter *time.Duration
			if d, ok := RetryAfter(resp.Header); ok {
				retryAfter = &d
				sleepFor = d
			}
			lastErr = ClassifyStatus(resp.StatusCode, errMsg, retryAfter)
			if attempt < maxRetries {
				if sleepErr := backoff.Sleep(ctx, sleepFor); sleepErr != nil {
					return Response{}, conduit.Cancelled().WithCause(sleepErr)
				}
				continue
			}
			break
		}

		if resp.StatusCode >= 500 {
			lastErr = ClassifyStatus(resp.StatusCode, errMsg, nil)
			if attempt < maxRetries {
				if sleepErr := backoff.Sleep(ctx, backoff.Compute(policy, attempt)); sleepErr != nil {
					return Response{}, conduit.Cancelled().WithCause(sleepErr)
				}
				continue
			}
			break
		}

		// Non-retryable status: return immediately.
		return Response{}, ClassifyStatus(resp.StatusCode, errMsg, nil)
	}

	if lastErr == nil {
		lastErr = conduit.GenerationFailed(errors.New("execute: retries exhausted with no recorded error"))
	}
	return Response{}, lastErr
}
