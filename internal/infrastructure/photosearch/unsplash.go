// Package photosearch finds stock food photos on Unsplash and Pixabay.
package photosearch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/fridgechef/backend/internal/domain"
	"github.com/fridgechef/backend/internal/infrastructure/httpclient"
)

var (
	_ domain.PhotoSearcher = (*Unsplash)(nil)
	_ domain.PhotoSearcher = (*Pixabay)(nil)
)

type unsplashResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// Unsplash searches landscape photos, used for dishes.
type Unsplash struct {
	req       *httpclient.Requester
	accessKey string
	baseURL   string
}

// NewUnsplash creates an Unsplash searcher. An empty key leaves it unconfigured.
func NewUnsplash(accessKey, baseURL string, timeout time.Duration, log zerolog.Logger) *Unsplash {
	if baseURL == "" {
		baseURL = "https://api.unsplash.com"
	}
	return &Unsplash{
		req: httpclient.New(httpclient.Config{
			Name:          "unsplash",
			Timeout:       timeout,
			RatePerSecond: 1,
			Burst:         3,
		}, log.With().Str("component", "unsplash").Logger()),
		accessKey: accessKey,
		baseURL:   baseURL,
	}
}

// Configured reports whether an access key is present.
func (u *Unsplash) Configured() bool {
	return u.accessKey != ""
}

// Search returns the regular-size URL of the best match, if any.
func (u *Unsplash) Search(ctx context.Context, query string) ([]string, error) {
	if !u.Configured() {
		return nil, domain.ErrProviderNotConfigured
	}

	params := url.Values{}
	params.Add("query", query)
	params.Add("per_page", "1")
	params.Add("orientation", "landscape")
	params.Add("client_id", u.accessKey)
	reqURL := fmt.Sprintf("%s/search/photos?%s", u.baseURL, params.Encode())

	var resp unsplashResponse
	if err := u.req.GetJSON(ctx, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.URLs.Regular != "" {
			urls = append(urls, r.URLs.Regular)
		}
	}
	return urls, nil
}
