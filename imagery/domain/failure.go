package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type FailureKind string

const (
	FailurePaymentRequired FailureKind = "PAYMENT_REQUIRED"
	FailureRateLimited     FailureKind = "RATE_LIMITED"
	FailureGeneric         FailureKind = "GENERIC"
)

var (
	ErrPaymentRequired = errors.New("payment required")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrCancelled       = errors.New("image request cancelled")
	ErrNoGenerator     = errors.New("no image generator configured")
)

// statusCoder is satisfied by upstream errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// Classify maps a generator error onto a failure kind by sentinel, HTTP status
// or, as a last resort, message text.
func Classify(err error) FailureKind {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrPaymentRequired):
		return FailurePaymentRequired
	case errors.Is(err, ErrRateLimited):
		return FailureRateLimited
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		switch sc.StatusCode() {
		case http.StatusPaymentRequired:
			return FailurePaymentRequired
		case http.StatusTooManyRequests:
			return FailureRateLimited
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "402") || strings.Contains(msg, "payment"):
		return FailurePaymentRequired
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return FailureRateLimited
	}
	return FailureGeneric
}

// GenerationError is returned by the image service when a generation fails.
type GenerationError struct {
	ProductID string
	Kind      FailureKind
	Err       error
	// Notice is set when this failure was the first of its kind to be announced.
	Notice *Notice
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("image generation for %s failed (%s): %v", e.ProductID, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Notice is a user-facing message about a failure kind.
type Notice struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}
