package gateway

import (
	"errors"
	"fmt"
)

// NetworkError describes a failed or malformed exchange with an upstream API.
type NetworkError struct {
	Route      string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("request to %s failed (HTTP %d): %v", e.Route, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.Route, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AsNetworkError attempts to unwrap an error into a NetworkError.
func AsNetworkError(err error) (*NetworkError, bool) {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr, true
	}
	return nil, false
}
