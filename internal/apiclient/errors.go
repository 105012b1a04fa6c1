package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// HTTPError is returned for any response outside the 2xx range.
// Body holds the raw response; Message is the best human-readable summary:
// the JSON "detail" field when present, else the compact JSON body, else
// "HTTP <status>".
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Body    []byte
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
}

// DecodeError is returned when a 2xx response body is not the JSON the
// caller expected.
type DecodeError struct {
	Method string
	Path   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %s: decode response: %v", e.Method, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsStatus reports whether err is (or wraps) an *HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == status
}

func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	return &HTTPError{
		Method:  method,
		Path:    path,
		Status:  status,
		Body:    body,
		Message: errorMessage(status, body),
	}
}

func errorMessage(status int, body []byte) string {
	fallback := fmt.Sprintf("HTTP %d", status)
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fallback
	}

	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(trimmed, &detail); err == nil && detail.Detail != "" {
		return detail.Detail
	}

	var generic any
	if err := json.Unmarshal(trimmed, &generic); err != nil {
		return fallback
	}
	switch generic.(type) {
	case map[string]any, []any:
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err == nil {
			return compact.String()
		}
	}
	return fallback
}
