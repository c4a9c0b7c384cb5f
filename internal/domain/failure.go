package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// FailureKind tags every failure this core can surface. The tag is assigned
// at the point the underlying fault is first observed; downstream code
// branches on the tag, never on message text.
type FailureKind string

const (
	FailValidation     FailureKind = "validation"
	FailPolicyDenied   FailureKind = "policy-denied"
	FailRateLimited    FailureKind = "rate-limited"
	FailTimeout        FailureKind = "timeout"
	FailNetwork        FailureKind = "network"
	FailHTTP           FailureKind = "http-error"
	FailAuthentication FailureKind = "authentication"
	FailNotFound       FailureKind = "not-found"
	FailOffline        FailureKind = "offline"
	FailUnknown        FailureKind = "unknown"
)

// ErrMissingCredential marks a provider selected without a configured API
// key. It is a terminal configuration condition, not a call failure.
var ErrMissingCredential = errors.New("provider credential not configured")

// Failure is the single error type crossing component boundaries.
type Failure struct {
	Kind   FailureKind
	Status int // HTTP status when Kind derives from a response, else 0
	Op     string
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	msg := f.Reason
	if msg == "" && f.Err != nil {
		msg = f.Err.Error()
	}
	if f.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", f.Op, f.Kind, f.Status, msg)
	}
	return fmt.Sprintf("%s: %s: %s", f.Op, f.Kind, msg)
}

func (f *Failure) Unwrap() error { return f.Err }

// Retryable reports whether the retry discipline may re-attempt after this
// failure. Only rate-limited, timeout and transport-level faults qualify.
func (f *Failure) Retryable() bool {
	switch f.Kind {
	case FailRateLimited, FailTimeout, FailNetwork:
		return true
	}
	return false
}

// NewFailure builds a tagged failure.
func NewFailure(kind FailureKind, op, reason string) *Failure {
	return &Failure{Kind: kind, Op: op, Reason: reason}
}

// WrapFailure tags an underlying error.
func WrapFailure(kind FailureKind, op string, err error) *Failure {
	return &Failure{Kind: kind, Op: op, Err: err}
}

// AsFailure extracts a *Failure from err, wrapping unknown errors so every
// path carries a tag.
func AsFailure(err error, op string) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: FailUnknown, Op: op, Err: err}
}

// IsRetryable reports whether err carries a retryable failure tag.
func IsRetryable(err error) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Retryable()
	}
	return false
}

// ClassifyStatus maps an HTTP response status to a failure kind.
func ClassifyStatus(op string, status int) *Failure {
	kind := FailHTTP
	switch {
	case status == 401 || status == 403:
		kind = FailAuthentication
	case status == 404:
		kind = FailNotFound
	case status == 429:
		kind = FailRateLimited
	case status >= 500:
		kind = FailNetwork
	}
	return &Failure{Kind: kind, Status: status, Op: op, Reason: fmt.Sprintf("unexpected status %d", status)}
}

// ClassifyTransport maps a transport-level error (from http.Client.Do or a
// dialer) to a failure kind.
func ClassifyTransport(op string, err error) *Failure {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Failure{Kind: FailTimeout, Op: op, Err: err}
	case errors.Is(err, context.Canceled):
		return &Failure{Kind: FailTimeout, Op: op, Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &Failure{Kind: FailTimeout, Op: op, Err: err}
		}
		return &Failure{Kind: FailNetwork, Op: op, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Failure{Kind: FailTimeout, Op: op, Err: err}
		}
		return &Failure{Kind: FailNetwork, Op: op, Err: err}
	}

	return &Failure{Kind: FailNetwork, Op: op, Err: err}
}
