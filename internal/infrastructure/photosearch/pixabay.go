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

type pixabayResponse struct {
	Hits []struct {
		WebformatURL string `json:"webformatURL"`
		PreviewURL   string `json:"previewURL"`
	} `json:"hits"`
}

// Pixabay searches food-category photos, used for ingredients.
type Pixabay struct {
	req     *httpclient.Requester
	apiKey  string
	baseURL string
}

// NewPixabay creates a Pixabay searcher. An empty key leaves it unconfigured.
func NewPixabay(apiKey, baseURL string, timeout time.Duration, log zerolog.Logger) *Pixabay {
	if baseURL == "" {
		baseURL = "https://pixabay.com/api"
	}
	return &Pixabay{
		req: httpclient.New(httpclient.Config{
			Name:          "pixabay",
			Timeout:       timeout,
			RatePerSecond: 1,
			Burst:         3,
		}, log.With().Str("component", "pixabay").Logger()),
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// Configured reports whether an API key is present.
func (p *Pixabay) Configured() bool {
	return p.apiKey != ""
}

// Search returns hit URLs, preferring the web-format size.
func (p *Pixabay) Search(ctx context.Context, query string) ([]string, error) {
	if !p.Configured() {
		return nil, domain.ErrProviderNotConfigured
	}

	params := url.Values{}
	params.Add("key", p.apiKey)
	params.Add("q", query)
	params.Add("image_type", "photo")
	params.Add("category", "food")
	params.Add("per_page", "3")
	params.Add("safesearch", "true")
	reqURL := fmt.Sprintf("%s/?%s", p.baseURL, params.Encode())

	var resp pixabayResponse
	if err := p.req.GetJSON(ctx, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		switch {
		case h.WebformatURL != "":
			urls = append(urls, h.WebformatURL)
		case h.PreviewURL != "":
			urls = append(urls, h.PreviewURL)
		}
	}
	return urls, nil
}
