// Package gemini classifies free-text transactions with the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// ModelName is the default Gemini model.
const ModelName = "gemini-2.5-flash"

// RequestTimeout is the default bound on one classification call.
const RequestTimeout = 10 * time.Second

// ContentGenerator is the part of genai.Models the classifier calls.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Client classifies transactions through a ContentGenerator.
type Client struct {
	generator ContentGenerator
	model     string
	timeout   time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithModel selects the model; empty keeps the default.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout bounds each request; non-positive keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a client backed by the Gemini API.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	g, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return NewClientWithGenerator(g.Models, opts...), nil
}

// NewClientWithGenerator creates a Client over any generator, typically a
// fake in tests.
func NewClientWithGenerator(generator ContentGenerator, opts ...Option) *Client {
	c := &Client{generator: generator, model: ModelName, timeout: RequestTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model reports the model the client calls.
func (c *Client) Model() string {
	return c.model
}
