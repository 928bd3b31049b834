// Package openai talks to the OpenAI chat completion and image generation APIs.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fridgechef/backend/internal/domain"
	"github.com/fridgechef/backend/internal/infrastructure/httpclient"
)

var (
	_ domain.ChatProvider   = (*Client)(nil)
	_ domain.ImageGenerator = (*Client)(nil)
)

// Config holds the OpenAI client settings.
type Config struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	ImageModel string
	Timeout    time.Duration
	// MaxTokens bounds chat completions.
	MaxTokens   int
	Temperature float64
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type imageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	Style   string `json:"style"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Client implements both chat completion and image generation.
type Client struct {
	cfg Config
	req *httpclient.Requester
	log zerolog.Logger
}

// NewClient creates an OpenAI client. An empty API key leaves it unconfigured.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "dall-e-3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}

	log = log.With().Str("component", "openai").Logger()
	return &Client{
		cfg: cfg,
		req: httpclient.New(httpclient.Config{
			Name:          "openai",
			Timeout:       cfg.Timeout,
			RatePerSecond: 2,
			Burst:         4,
		}, log),
		log: log,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}

// Complete sends a system and user message and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.Configured() {
		return "", domain.ErrProviderNotConfigured
	}

	in := chatRequest{
		Model: c.cfg.ChatModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	var out chatResponse
	if err := c.req.PostJSON(ctx, c.cfg.BaseURL+"/chat/completions", in, c.headers(), &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty chat completion", domain.ErrMalformedResponse)
	}

	return out.Choices[0].Message.Content, nil
}

// GenerateImage renders prompt and returns the hosted image URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", domain.ErrProviderNotConfigured
	}

	in := imageRequest{
		Model:   c.cfg.ImageModel,
		Prompt:  prompt,
		N:       1,
		Size:    "1024x1024",
		Quality: "standard",
		Style:   "natural",
	}

	var out imageResponse
	if err := c.req.PostJSON(ctx, c.cfg.BaseURL+"/images/generations", in, c.headers(), &out); err != nil {
		return "", err
	}
	if len(out.Data) == 0 || out.Data[0].URL == "" {
		return "", fmt.Errorf("%w: no image in response", domain.ErrMalformedResponse)
	}

	c.log.Debug().Msg("generated image")
	return out.Data[0].URL, nil
}
