package books

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	defaultRetryLimit   = 3
	defaultRetryBackoff = 300 * time.Millisecond
	maxRetryBackoff     = 5 * time.Second
)

var retryMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodPut:     {},
	http.MethodHead:    {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
	http.MethodTrace:   {},
}

var retryStatuses = map[int]struct{}{
	http.StatusRequestTimeout:        {},
	http.StatusRequestEntityTooLarge: {},
	http.StatusTooManyRequests:       {},
	http.StatusInternalServerError:   {},
	http.StatusBadGateway:            {},
	http.StatusServiceUnavailable:    {},
	http.StatusGatewayTimeout:        {},
}

// retryTransport retries idempotent requests on connection errors and
// transient statuses. attempts counts the first try.
type retryTransport struct {
	next     http.RoundTripper
	attempts int
	initial  time.Duration
	limiter  *rate.Limiter
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if _, ok := retryMethods[req.Method]; !ok || t.attempts <= 1 {
		if err := t.wait(req); err != nil {
			return nil, err
		}
		return t.next.RoundTrip(req)
	}

	var (
		resp    *http.Response
		attempt int
	)
	op := func() error {
		attempt++
		current := req
		if attempt > 1 && req.Body != nil && req.Body != http.NoBody {
			if req.GetBody == nil {
				return backoff.Permanent(fmt.Errorf("request body cannot be replayed"))
			}
			body, err := req.GetBody()
			if err != nil {
				return backoff.Permanent(fmt.Errorf("replay request body: %w", err))
			}
			current = req.Clone(req.Context())
			current.Body = body
		}
		if err := t.wait(current); err != nil {
			return backoff.Permanent(err)
		}

		r, err := t.next.RoundTrip(current)
		if err != nil {
			return err
		}
		if _, retry := retryStatuses[r.StatusCode]; retry && attempt < t.attempts {
			_, _ = io.Copy(io.Discard, r.Body)
			_ = r.Body.Close()
			return fmt.Errorf("transient status %d", r.StatusCode)
		}
		resp = r
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(t.backOff(), uint64(t.attempts-1)), req.Context())
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

func (t *retryTransport) wait(req *http.Request) error {
	if t.limiter == nil {
		return nil
	}
	if err := t.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

func (t *retryTransport) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.initial
	b.Multiplier = 2
	b.MaxInterval = maxRetryBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
