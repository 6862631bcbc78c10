package jellyfin

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// AuthError is a rejected authentication attempt (bad credentials or any
// non-2xx from the authenticate endpoint).
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("authentication failed: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("authentication failed: %d", e.Status)
}

// NetworkError is a connection failure or a non-2xx response from a data
// endpoint.
type NetworkError struct {
	Op     string
	Status int // 0 when the request never completed
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError is a request that exceeded its deadline. It is deliberately
// distinguishable from NetworkError so callers can offer a retry.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("%s: request timed out", e.Op) }

func (e *TimeoutError) Unwrap() error { return e.Err }

// translateErr classifies a transport-level failure from http.Client.Do.
func translateErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Op: op, Err: err}
	}
	return &NetworkError{Op: op, Err: err}
}
