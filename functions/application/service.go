package application

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mervel/storefront/functions/domain"
	"github.com/mervel/storefront/integrations/aigateway"
	"github.com/mervel/storefront/validations"
	"github.com/sirupsen/logrus"
)

// Errors of the page content proxy. Status codes mirror the upstream refusal.
var (
	ErrContentRateLimited = &aigateway.StatusError{Status: http.StatusTooManyRequests, Message: "Rate limit exceeded. Please try again shortly."}
	ErrContentCredits     = &aigateway.StatusError{Status: http.StatusPaymentRequired, Message: "AI credits exhausted."}
	ErrContentFailed      = &aigateway.StatusError{Status: http.StatusInternalServerError, Message: "Failed to generate content"}
	ErrContentEmpty       = &aigateway.StatusError{Status: http.StatusInternalServerError, Message: "No content returned"}
)

// ProxyService brokers the storefront's AI calls: product images and
// static page copy.
type ProxyService struct {
	images   domain.ImageGenerator
	text     domain.TextGenerator
	cache    domain.ContentCache
	cacheTTL time.Duration
}

func NewProxyService(images domain.ImageGenerator, text domain.TextGenerator, cache domain.ContentCache, cacheTTL time.Duration) *ProxyService {
	return &ProxyService{images: images, text: text, cache: cache, cacheTTL: cacheTTL}
}

// GenerateImage forwards a prompt to the image generator.
func (s *ProxyService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if err := validations.ValidatePrompt(prompt); err != nil {
		return "", err
	}
	if s.images == nil || !s.images.Configured() {
		logrus.Error("[FUNCTIONS] Image generation requested but no AI key is configured")
		return "", aigateway.ErrNotConfigured
	}
	return s.images.Generate(ctx, prompt)
}

// GeneratePage returns markdown copy for a page type, served from cache when
// it was generated before.
func (s *ProxyService) GeneratePage(ctx context.Context, pageType string) (string, error) {
	if err := validations.ValidatePageType(pageType); err != nil {
		return "", err
	}
	prompt, _ := domain.PagePrompt(pageType)

	if s.text == nil || !s.text.Configured() {
		logrus.Error("[FUNCTIONS] Page content requested but no AI key is configured")
		return "", aigateway.ErrNotConfigured
	}

	if s.cache != nil {
		content, ok, err := s.cache.Get(ctx, pageType)
		if err != nil {
			logrus.WithError(err).Warnf("[FUNCTIONS] Content cache read failed for %s", pageType)
		} else if ok {
			return content, nil
		}
	}

	content, err := s.text.Complete(ctx, prompt)
	if err != nil {
		return "", contentError(err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrContentEmpty
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, pageType, content, s.cacheTTL); err != nil {
			logrus.WithError(err).Warnf("[FUNCTIONS] Content cache write failed for %s", pageType)
		}
	}
	return content, nil
}

func contentError(err error) error {
	var se *aigateway.StatusError
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusTooManyRequests:
			return ErrContentRateLimited
		case http.StatusPaymentRequired:
			return ErrContentCredits
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logrus.WithError(err).Error("[FUNCTIONS] AI gateway error")
	return ErrContentFailed
}
