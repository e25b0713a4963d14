package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go/failsafehttp"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// newRetryTransport retries transport failures, 429 and 5xx responses up to maxRetries
// times with exponential backoff. With maxRetries <= 0 base is returned unchanged and
// every catalog call is a single request.
func newRetryTransport(base http.RoundTripper, maxRetries int, delay time.Duration) http.RoundTripper {
	if maxRetries <= 0 {
		return base
	}
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	policy := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(shouldRetry).
		WithMaxRetries(maxRetries).
		WithBackoff(delay, 8*delay).
		ReturnLastFailure().
		Build()

	return failsafehttp.NewRoundTripper(base, policy)
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
}
