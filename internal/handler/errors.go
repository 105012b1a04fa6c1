package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeNotFound   = "not_found"
	codeValidation = "validation_error"
	codeUpstream   = "upstream_error"
)

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the message because the handler is the layer that
// knows what was being looked up.
func notFoundBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: codeNotFound, Message: message}}
}

// requestBody returns an ErrorResponse for a request rejected before it
// reaches the core (e.g. missing or malformed body).
func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: codeValidation, Message: message}}
}

// upstreamBody returns an ErrorResponse for a backend failure.
func upstreamBody(err error) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: codeUpstream, Message: unwrapMessage(err)}}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// unwrapMessage strips the "pkg.Type.Method: " wrapping prefixes from err,
// leaving the innermost human-readable part.
// e.g. "tripsync.Core.RefreshTrips: list trips: apiclient: HTTP 502" → "HTTP 502"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && i+2 < len(msg) {
		return msg[i+2:]
	}
	return msg
}

// isMaxBytes reports whether err came from an http.MaxBytesReader limit.
func isMaxBytes(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
