package framequery

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/framequery/framequery-go/retry"
)

// handleResponse turns a completed HTTP exchange into either the unwrapped
// payload or a typed *Error. Successful bodies carrying a {"data": ...}
// envelope yield the nested value; other bodies are returned whole; an
// empty successful body yields nil.
func handleResponse(resp *http.Response, body []byte) (any, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if len(body) == 0 {
			return nil, nil
		}
		var parsed any
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, &Error{
				Code:       ErrAPI,
				Message:    "invalid JSON in response",
				HTTPStatus: resp.StatusCode,
				Cause:      err,
			}
		}
		if m, ok := parsed.(map[string]any); ok {
			if data, ok := m["data"]; ok {
				return data, nil
			}
		}
		return parsed, nil
	}
	return nil, classifyError(resp.StatusCode, resp.Header, body)
}

// classifyError maps a non-2xx exchange to the error taxonomy. The status
// code alone decides the kind; the body only contributes the message,
// preferring an "error" field, then "message", then the raw text, then a
// generic "API error N".
func classifyError(status int, header http.Header, body []byte) *Error {
	message := fmt.Sprintf("API error %d", status)
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg := stringField(parsed, "error"); msg != "" {
			message = msg
		} else if msg := stringField(parsed, "message"); msg != "" {
			message = msg
		}
	} else if len(body) > 0 {
		message = string(body)
	}

	switch status {
	case http.StatusUnauthorized:
		return &Error{Code: ErrAuthentication, Message: message, HTTPStatus: status}
	case http.StatusForbidden:
		return &Error{Code: ErrPermissionDenied, Message: message, HTTPStatus: status}
	case http.StatusNotFound:
		return &Error{Code: ErrNotFound, Message: message, HTTPStatus: status}
	case http.StatusTooManyRequests:
		e := &Error{Code: ErrRateLimited, Message: message, HTTPStatus: status, Retryable: true}
		// An unparseable Retry-After is ignored, not an error.
		if d, ok := retry.ParseRetryAfter(header.Get("Retry-After")); ok {
			e.RetryAfter = d.Seconds()
		}
		return e
	default:
		return &Error{
			Code:       ErrAPI,
			Message:    message,
			HTTPStatus: status,
			Body:       parsed,
			Retryable:  retry.RetryableStatus(status),
		}
	}
}
