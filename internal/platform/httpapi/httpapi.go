// Package httpapi provides shared JSON request/response helpers for REST handlers.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	apperrors "github.com/maisonhq/maison/internal/platform/errors"
)

// maxBodyBytes caps JSON request bodies accepted by DecodeJSON.
const maxBodyBytes = 1 << 20

// ErrorPayload is the wire shape of an error response.
type ErrorPayload struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// WriteJSON writes value as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if value == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// WriteError maps a domain error onto an HTTP JSON error response.
func WriteError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	payload := ErrorPayload{
		Code:    string(code),
		Message: publicMessage(code, err),
	}
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		payload.Metadata = domainErr.Metadata
	}
	WriteJSON(w, code.HTTPStatus(), payload)
}

// DecodeJSON reads a bounded JSON request body into target.
func DecodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return fmt.Errorf("request body is required")
	}
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// publicMessage returns a user-safe message for the error.
// Internal failures fall back to the generic status text so storage details
// never leak into responses.
func publicMessage(code apperrors.Code, err error) string {
	if code == apperrors.CodeUnknown {
		return http.StatusText(http.StatusInternalServerError)
	}
	if err == nil {
		return http.StatusText(code.HTTPStatus())
	}
	return err.Error()
}
