package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Remote error codes the controller branches on
const (
	// CodeTokenResetMismatch means the agent token belongs to a previous
	// server reset. Fatal and irrecoverable.
	CodeTokenResetMismatch = 4113

	// CodeInsufficientFuel means a navigate request needed more fuel than
	// the tank holds. Triggers the CRUISE -> DRIFT fallback.
	CodeInsufficientFuel = 4203
)

// APIError is a logical error carried in a response body's "error" object.
// Non-fatal codes are returned to callers, which branch on Code.
type APIError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// IsCode reports whether err wraps an APIError with the given code
func IsCode(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// errorEnvelope is the wire shape of an error response body
type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// parseAPIError extracts an APIError from a response body, or nil
func parseAPIError(body []byte) *APIError {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	return env.Error
}

// TransportError indicates retries were exhausted without a usable response
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
