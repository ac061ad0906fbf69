package aigateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mervel/storefront/core/config"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// StatusError is an upstream failure carrying the HTTP status to report.
type StatusError struct {
	Status  int
	Message string
	Err     error
}

func (e *StatusError) Error() string   { return e.Message }
func (e *StatusError) StatusCode() int { return e.Status }
func (e *StatusError) Unwrap() error   { return e.Err }

var ErrNotConfigured = &StatusError{Status: http.StatusInternalServerError, Message: "Server configuration error"}

// Client talks to an OpenAI-compatible AI gateway for product photography and
// page copy.
type Client struct {
	api         openai.Client
	configured  bool
	imageModel  string
	textModel   string
	maxAttempts int
	retryDelay  time.Duration
	timeout     time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg config.AIConfig, extra ...option.RequestOption) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.GatewayKey),
		option.WithBaseURL(cfg.GatewayURL),
		option.WithMaxRetries(0),
	}
	opts = append(opts, extra...)

	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = 3
	}
	return &Client{
		api:         openai.NewClient(opts...),
		configured:  cfg.GatewayKey != "",
		imageModel:  cfg.ImageModel,
		textModel:   cfg.TextModel,
		maxAttempts: attempts,
		retryDelay:  cfg.RetryDelay,
		timeout:     cfg.RequestLimit,
		sleep:       sleepContext,
	}
}

func (c *Client) Configured() bool { return c.configured }

// Generate produces one product image, retrying per Retry.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}
	return Retry(ctx, c.maxAttempts, c.retryDelay, c.sleep, func(ctx context.Context) (string, error) {
		return c.generateOnce(ctx, prompt)
	})
}

// Retry runs once up to attempts times. Attempts that fail with a server
// error, a transport error or an empty image are retried after
// attempt x delay; payment and rate-limit refusals are returned immediately.
func Retry(ctx context.Context, attempts int, delay time.Duration, sleep func(context.Context, time.Duration) error, once func(context.Context) (string, error)) (string, error) {
	if attempts <= 0 {
		attempts = 1
	}
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		url, err := once(ctx)
		if err == nil {
			if attempt > 1 {
				logrus.Infof("[GATEWAY] Image generated on attempt %d", attempt)
			}
			return url, nil
		}

		var se *StatusError
		if errors.As(err, &se) && (se.Status == http.StatusPaymentRequired || se.Status == http.StatusTooManyRequests) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		lastErr = err
		logrus.Warnf("[GATEWAY] Image attempt %d/%d failed: %v", attempt, attempts, err)
		if attempt < attempts {
			if err := sleep(ctx, time.Duration(attempt)*delay); err != nil {
				return "", err
			}
		}
	}
	return "", lastErr
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:      openai.ChatModel(c.imageModel),
		Messages:   []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Modalities: []string{"image", "text"},
	})
	if err != nil {
		return "", classify(err, func(status int) string {
			switch status {
			case http.StatusPaymentRequired:
				return "Payment required"
			case http.StatusTooManyRequests:
				return "Rate limit exceeded"
			}
			return fmt.Sprintf("Image generation failed: %d", status)
		})
	}

	if len(completion.Choices) > 0 {
		url := gjson.Get(completion.Choices[0].Message.RawJSON(), "images.0.image_url.url").String()
		if url != "" {
			return url, nil
		}
	}
	return "", &StatusError{Status: http.StatusInternalServerError, Message: "No image returned from AI model"}
}

// Complete runs a single text completion. There is no retry.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.textModel),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	if err != nil {
		return "", classify(err, func(status int) string {
			return fmt.Sprintf("Content generation failed: %d", status)
		})
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func classify(err error, message func(status int) string) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &StatusError{Status: apiErr.StatusCode, Message: message(apiErr.StatusCode), Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &StatusError{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
