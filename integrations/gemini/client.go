package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mervel/storefront/core/config"
	"github.com/mervel/storefront/integrations/aigateway"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	DefaultImageModel = "gemini-2.5-flash-image"
	DefaultTextModel  = "gemini-2.5-flash-lite"
)

// Client calls the Gemini API directly. It is used when no AI gateway is configured.
type Client struct {
	apiKey      string
	baseURL     string
	imageModel  string
	textModel   string
	maxAttempts int
	retryDelay  time.Duration

	mu     sync.Mutex
	client *genai.Client
}

func NewClient(cfg config.AIConfig) *Client {
	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = 3
	}
	return &Client{
		apiKey:      cfg.GeminiKey,
		imageModel:  modelName(cfg.ImageModel, DefaultImageModel),
		textModel:   modelName(cfg.TextModel, DefaultTextModel),
		maxAttempts: attempts,
		retryDelay:  cfg.RetryDelay,
	}
}

// WithBaseURL points the client at another endpoint.
func (c *Client) WithBaseURL(url string) *Client {
	c.mu.Lock()
	c.baseURL = url
	c.client = nil
	c.mu.Unlock()
	return c
}

func (c *Client) Configured() bool { return c.apiKey != "" }

// gateway model ids look like "google/gemini-2.5-flash-image"
func modelName(configured, fallback string) string {
	if configured == "" {
		return fallback
	}
	if i := strings.LastIndex(configured, "/"); i >= 0 {
		return configured[i+1:]
	}
	return configured
}

// sdk builds the genai client on first use and shares it afterwards. A failed
// build is not remembered so the next call tries again.
func (c *Client) sdk(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := genai.NewClient(context.WithoutCancel(ctx), cc)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

// Generate returns the first inline image of the response as a data URI,
// with the same retry policy as the gateway.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", aigateway.ErrNotConfigured
	}
	return aigateway.Retry(ctx, c.maxAttempts, c.retryDelay, nil, func(ctx context.Context) (string, error) {
		return c.generateOnce(ctx, prompt)
	})
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	client, err := c.sdk(ctx)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, c.imageModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return "", statusError(err, "Image generation failed")
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(part.InlineData.Data)), nil
			}
		}
	}
	logrus.Warn("[GEMINI] Response carried no inline image")
	return "", &aigateway.StatusError{Status: http.StatusInternalServerError, Message: "No image returned from AI model"}
}

// Complete returns the text of a single completion.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", aigateway.ErrNotConfigured
	}
	client, err := c.sdk(ctx)
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(ctx, c.textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", statusError(err, "Content generation failed")
	}
	return strings.TrimSpace(resp.Text()), nil
}

func statusError(err error, prefix string) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}

	switch code {
	case 0:
		return &aigateway.StatusError{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
	case http.StatusPaymentRequired:
		return &aigateway.StatusError{Status: code, Message: "Payment required", Err: err}
	case http.StatusTooManyRequests:
		return &aigateway.StatusError{Status: code, Message: "Rate limit exceeded", Err: err}
	}
	return &aigateway.StatusError{Status: code, Message: fmt.Sprintf("%s: %d", prefix, code), Err: err}
}
