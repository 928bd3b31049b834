// Package probe checks whether a candidate image URL is reachable.
package probe

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/fridgechef/backend/internal/domain"
)

var _ domain.ImageProber = (*HTTPProber)(nil)

// HTTPProber issues a bounded GET and reports whether it answered 2xx.
type HTTPProber struct {
	client  *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a prober. A non-positive timeout defaults to 2s.
func New(timeout time.Duration, log zerolog.Logger) *HTTPProber {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPProber{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		log:     log.With().Str("component", "probe").Logger(),
	}
}

// Probe returns false on any error, timeout or non-2xx status.
func (p *HTTPProber) Probe(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Debug().Str("url", url).Err(err).Msg("probe failed")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}
