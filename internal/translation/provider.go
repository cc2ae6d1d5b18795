package translation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Provider translates text between two language tokens. Tokens are resolved
// by the provider against its own language catalog.
type Provider interface {
	// Translate returns the translation of text from one language to another
	Translate(ctx context.Context, text, from, to string) (string, error)

	// Name returns the provider name
	Name() string
}

// ErrorKind classifies a ProviderError.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota + 1
	KindTimeout
	KindStatus
	KindParse
	KindCircuitOpen
	KindInvalidInput
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	case KindParse:
		return "parse"
	case KindCircuitOpen:
		return "circuit open"
	case KindInvalidInput:
		return "invalid input"
	default:
		return "unknown"
	}
}

// ProviderError is returned by every provider call that did not produce a
// translation.
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s error (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the same request may succeed: network
// failures, timeouts, 429 and 5xx responses. Cancellation is never temporary.
func (e *ProviderError) Temporary() bool {
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	switch e.Kind {
	case KindNetwork, KindTimeout:
		return true
	case KindStatus:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	default:
		return false
	}
}

// IsTemporary reports whether err is a temporary ProviderError.
func IsTemporary(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Temporary()
	}
	return false
}

func newError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

func statusError(provider string, status int, message string) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Kind:       KindStatus,
		StatusCode: status,
		Err:        errors.New(message),
	}
}

// transportError classifies a failed http.Client.Do.
func transportError(provider string, err error) *ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(provider, KindTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(provider, KindTimeout, err)
	}
	return newError(provider, KindNetwork, err)
}
