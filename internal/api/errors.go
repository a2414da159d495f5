package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ServerError means the backend was reachable but rejected the request. The
// detail is rendered from the response body: a string detail verbatim, an
// array of validation messages joined, anything else stringified.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server error: status %d", e.Status)
	}
	return fmt.Sprintf("server error: status %d: %s", e.Status, e.Detail)
}

// StatusCode returns the HTTP status that produced the error.
func (e *ServerError) StatusCode() int {
	return e.Status
}

// RequestError means no response reached the client; the operation was
// aborted with state unchanged.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("no response from server (%s): %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// errorDetail extracts a user-presentable message from an error body shaped
// {"detail": string | [{"msg": ...}] | object}.
func errorDetail(body []byte, status int) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return http.StatusText(status)
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var messages []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &messages); err == nil && len(messages) > 0 {
		parts := make([]string, 0, len(messages))
		for _, m := range messages {
			parts = append(parts, m.Msg)
		}
		return strings.Join(parts, ", ")
	}

	return string(envelope.Detail)
}
