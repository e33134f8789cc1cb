package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TransportError means the request never produced a usable response: the
// network failed or the body could not be read or decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a non-success HTTP status with a JSON body.
type APIError struct {
	StatusCode int
	Message    string // the body's "error" field, or the compact body
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// ShapeError is a well-formed response that does not have the expected shape.
type ShapeError struct {
	Endpoint string
	Reason   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %s", e.Endpoint, e.Reason)
}

// newAPIError builds an APIError from a JSON body. Bodies that are not JSON
// are a decoding failure, not an application error.
func newAPIError(op string, status int, body []byte) error {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decoding error response (status %d): %w", status, err)}
	}

	if obj, ok := decoded.(map[string]any); ok {
		if msg, ok := obj["error"].(string); ok && msg != "" {
			return &APIError{StatusCode: status, Message: msg, Body: body}
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return &APIError{StatusCode: status, Message: string(body), Body: body}
	}
	return &APIError{StatusCode: status, Message: compact.String(), Body: body}
}
