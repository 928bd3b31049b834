// Package httpclient is the outbound HTTP plumbing shared by every provider client:
// a per-operation time budget, a client-side rate limiter, a circuit breaker and
// JSON encoding, with failures mapped onto the domain error taxonomy.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/fridgechef/backend/internal/domain"
)

// Config configures a Requester.
type Config struct {
	// Name identifies the provider in logs and breaker state.
	Name string
	// Timeout bounds one whole operation, including rate-limit waits and retries.
	Timeout time.Duration
	// RatePerSecond and Burst configure the client-side limiter. Zero disables it.
	RatePerSecond float64
	Burst         int
	// Attempts is the number of tries for 5xx responses. Default 1.
	Attempts int
	// FailureThreshold is the number of consecutive failures that opens the breaker. Default 5.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open. Default 30s.
	OpenTimeout time.Duration
	UserAgent   string
}

// Requester executes provider calls.
type Requester struct {
	name      string
	http      *http.Client
	timeout   time.Duration
	limiter   *rate.Limiter
	attempts  int
	userAgent string
	breaker   *gobreaker.CircuitBreaker[[]byte]
	log       zerolog.Logger
}

// New creates a Requester.
func New(cfg Config, log zerolog.Logger) *Requester {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "FridgeChef/1.0"
	}

	r := &Requester{
		name:      cfg.Name,
		http:      &http.Client{},
		timeout:   cfg.Timeout,
		attempts:  cfg.Attempts,
		userAgent: cfg.UserAgent,
		log:       log.With().Str("provider", cfg.Name).Logger(),
	}

	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	r.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// A missing record is an answer, not an outage.
			return err == nil || errors.Is(err, domain.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return r
}

// Name returns the provider name.
func (r *Requester) Name() string {
	return r.name
}

// GetJSON issues a GET and decodes the JSON response into out.
func (r *Requester) GetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	body, err := r.Do(ctx, http.MethodGet, url, nil, headers)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// PostJSON encodes in, issues a POST and decodes the JSON response into out.
func (r *Requester) PostJSON(ctx context.Context, url string, in any, headers map[string]string, out any) error {
	body, err := r.Do(ctx, http.MethodPost, url, in, headers)
	if err != nil {
		return err
	}
	return decode(body, out)
}

func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

// Do executes the request within the configured budget and returns the response body.
func (r *Requester) Do(ctx context.Context, method, url string, in any, headers map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal payload: %w", r.name, err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, r.classify(err)
			}
		}

		body, err := r.breaker.Execute(func() ([]byte, error) {
			return r.roundTrip(ctx, method, url, payload, headers)
		})
		if err == nil {
			return body, nil
		}

		lastErr = r.classify(err)
		if !retryable(err) || attempt == r.attempts {
			break
		}

		r.log.Debug().Int("attempt", attempt).Err(err).Msg("retrying request")
		select {
		case <-ctx.Done():
			return nil, r.classify(ctx.Err())
		case <-time.After(exponentialBackoff(attempt)):
		}
	}

	return nil, lastErr
}

func (r *Requester) roundTrip(ctx context.Context, method, url string, payload []byte, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	return body, nil
}

// classify maps transport, breaker and context errors onto the domain taxonomy.
func (r *Requester) classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", domain.ErrProviderTimeout, r.name, err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %s: circuit open", domain.ErrProviderFailure, r.name)
	default:
		return fmt.Errorf("%w: %s: %v", domain.ErrProviderFailure, r.name, err)
	}
}

// StatusError is a non-2xx provider response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return false
}

// exponentialBackoff returns the wait before the next attempt: 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
