// Package httpjson writes JSON responses and structured error bodies for the HTTP API.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodySize bounds request bodies read by Decode.
const maxBodySize = 1 << 20

// ErrInvalidBody is returned by Decode when the body is not a JSON object.
var ErrInvalidBody = errors.New("invalid JSON body")

// Error is the body written for every non-2xx response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	CodeBadRequest   = "bad_request"
	CodeValidation   = "validation_error"
	CodeNotFound     = "not_found"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeInternal     = "internal_error"
)

// Message wraps an informational response such as {"message": "role updated"}.
type Message struct {
	Message string `json:"message"`
}

// Write writes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // connection may already be closed
		json.NewEncoder(w).Encode(v)
	}
}

// WriteError writes an Error body.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	Write(w, status, Error{Status: status, Code: code, Message: message})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeBadRequest, message)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden writes a 403 response.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// InternalError writes a 500 response. message must not carry internal details.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternal, message)
}

// Decode reads a single JSON object from r's body into v. An empty body,
// malformed JSON or trailing data yields ErrInvalidBody.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return ErrInvalidBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected trailing data", ErrInvalidBody)
	}
	return nil
}
