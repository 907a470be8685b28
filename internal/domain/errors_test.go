package domain

import (
	"errors"
	"testing"
)

func TestIsRetriable(t *testing.T) {
	transient := NewTransientFetchError("orders", errors.New("connection reset"))
	if !IsRetriable(transient) {
		t.Error("transient fetch error should be retriable")
	}

	malformed := NewMalformedResponseError("statistics", errors.New("missing payload"))
	if IsRetriable(malformed) {
		t.Error("malformed response should not be retriable")
	}

	cfg := &ConfigError{Field: "market.base_url", Err: errors.New("empty")}
	if IsRetriable(cfg) {
		t.Error("config error should not be retriable")
	}

	if IsRetriable(errors.New("plain")) {
		t.Error("plain error should not be retriable")
	}
	if IsRetriable(nil) {
		t.Error("nil should not be retriable")
	}
}

func TestIsRetriable_Wrapped(t *testing.T) {
	inner := NewTransientFetchError("orders", errors.New("timeout"))
	wrapped := errors.Join(errors.New("cycle aborted"), inner)
	if !IsRetriable(wrapped) {
		t.Error("retriability should survive wrapping")
	}
}

func TestMalformedResponseError_MatchesSentinel(t *testing.T) {
	err := NewMalformedResponseError("statistics", errors.New("window missing"))
	if !errors.Is(err, ErrMalformedResponse) {
		t.Error("malformed fetch error should match ErrMalformedResponse")
	}
}

func TestFetchError_Message(t *testing.T) {
	err := NewTransientFetchError("orders", errors.New("503"))
	if got := err.Error(); got != "orders: 503" {
		t.Errorf("message = %q", got)
	}
	if errors.Unwrap(err) == nil {
		t.Error("fetch error should unwrap to its cause")
	}
}
