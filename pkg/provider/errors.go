package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Error wraps a provider failure with status metadata.
type Error struct {
	Status    int
	Temporary bool
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("provider error (status=%d)", e.Status)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// rate-limit signatures seen in provider error messages. Gemini reports
// RESOURCE_EXHAUSTED, the OpenAI-compatible APIs report 429 or a
// rate_limit error type.
var rateLimitSignatures = []string{
	"429",
	"resource_exhausted",
	"rate limit",
	"rate_limit",
	"quota",
}

// IsRateLimited reports whether an error signals provider-side quota
// exhaustion, by status code or by message signature.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var provErr *Error
	if errors.As(err, &provErr) && provErr.Status == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range rateLimitSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// IsTransient reports whether an error is safe to retry on a different
// provider: timeouts, 5xx responses, and temporary network failures.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var provErr *Error
	if errors.As(err, &provErr) {
		if provErr.Temporary {
			return true
		}
		if provErr.Status >= 500 && provErr.Status <= 599 {
			return true
		}
	}
	return false
}

// IsRetryable reports whether a different provider plausibly succeeds
// where this call failed. Only these errors drive cross-agent fallback.
func IsRetryable(err error) bool {
	return IsRateLimited(err) || IsTransient(err)
}
