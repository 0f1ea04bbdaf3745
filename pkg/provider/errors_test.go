package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsRateLimited(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 429", &Error{Status: 429, Err: errors.New("too many requests")}, true},
		{"resource exhausted message", errors.New("google API error: RESOURCE_EXHAUSTED"), true},
		{"quota message", errors.New("quota exceeded for project"), true},
		{"wrapped 429", fmt.Errorf("call failed: %w", &Error{Status: 429}), true},
		{"plain 500", &Error{Status: 500, Err: errors.New("internal")}, false},
		{"unrelated", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		if got := IsRateLimited(tc.err); got != tc.want {
			t.Fatalf("%s: IsRateLimited = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"temporary", &Error{Temporary: true, Err: errors.New("no candidates")}, true},
		{"status 503", &Error{Status: 503, Err: errors.New("unavailable")}, true},
		{"status 400", &Error{Status: 400, Err: errors.New("bad request")}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsTransient(tc.err); got != tc.want {
			t.Fatalf("%s: IsTransient = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&Error{Status: 429}) {
		t.Fatal("rate limits must be retryable")
	}
	if !IsRetryable(&Error{Status: 502}) {
		t.Fatal("5xx must be retryable")
	}
	if IsRetryable(&Error{Status: 401, Err: errors.New("unauthorized")}) {
		t.Fatal("auth failures must not be retryable")
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := &Error{Status: 500, Err: inner}
	if !errors.Is(err, inner) {
		t.Fatal("Error must unwrap to its cause")
	}
}
