package error

import "net/http"

// PaymentRequiredError is raised when the AI provider reports exhausted credits.
type PaymentRequiredError string

func (err PaymentRequiredError) Error() string {
	return string(err)
}

func (err PaymentRequiredError) ErrCode() string {
	return "PAYMENT_REQUIRED"
}

func (err PaymentRequiredError) StatusCode() int {
	return http.StatusPaymentRequired
}

// RateLimitedError is raised when the AI provider throttles us.
type RateLimitedError string

func (err RateLimitedError) Error() string {
	return string(err)
}

func (err RateLimitedError) ErrCode() string {
	return "RATE_LIMITED"
}

func (err RateLimitedError) StatusCode() int {
	return http.StatusTooManyRequests
}
