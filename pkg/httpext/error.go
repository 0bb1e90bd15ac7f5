package httpext

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorKind classifies a failed round trip against the gateway into a
// stable taxonomy callers can branch on.
type ErrorKind string

const (
	KindUnauthorized    ErrorKind = "UNAUTHORIZED"
	KindForbidden       ErrorKind = "FORBIDDEN"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindValidationError ErrorKind = "VALIDATION_ERROR"
	KindTimeout         ErrorKind = "TIMEOUT"
	KindNetworkError    ErrorKind = "NETWORK_ERROR"
	KindUnknown         ErrorKind = "UNKNOWN"
)

// KindForStatus maps a non-2xx HTTP status to its error kind
func KindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest:
		return KindValidationError
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindUnknown
	}
}

// PayloadKind tags how a response body was decoded
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadJSON
	PayloadText
)

// Payload is the result of the two-stage body decode: JSON when the body
// parses as JSON, raw text otherwise, none for empty bodies.
type Payload struct {
	Kind PayloadKind
	JSON interface{}
	Text string
}

// JSONPayload wraps an already-decoded JSON value
func JSONPayload(v interface{}) Payload {
	return Payload{Kind: PayloadJSON, JSON: v}
}

// TextPayload wraps a raw text body
func TextPayload(s string) Payload {
	return Payload{Kind: PayloadText, Text: s}
}

// DecodeLenient attempts a JSON decode of the body and falls back to raw
// text when the body is not valid JSON. Empty bodies decode to PayloadNone.
func DecodeLenient(body []byte) Payload {
	if len(body) == 0 {
		return Payload{Kind: PayloadNone}
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err == nil {
		return Payload{Kind: PayloadJSON, JSON: v}
	}
	return Payload{Kind: PayloadText, Text: string(body)}
}

// Decode unmarshals a JSON payload into v. Text and empty payloads are an error.
func (p Payload) Decode(v interface{}) error {
	if p.Kind != PayloadJSON {
		return fmt.Errorf("payload is not JSON")
	}

	data, err := json.Marshal(p.JSON)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// RequestError is the normalized failure shape for every request the
// console sends downstream. Transport errors never escape raw.
type RequestError struct {
	Kind    ErrorKind
	Status  int
	Details Payload
	cause   error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway request failed: %s (status %d)", e.Kind, e.Status)
	}
	if e.cause != nil {
		return fmt.Sprintf("gateway request failed: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("gateway request failed: %s", e.Kind)
}

func (e *RequestError) Unwrap() error {
	return e.cause
}

// NewStatusError builds a RequestError from a non-2xx response
func NewStatusError(status int, body []byte) *RequestError {
	return &RequestError{
		Kind:    KindForStatus(status),
		Status:  status,
		Details: DecodeLenient(body),
	}
}

// ClassifyTransportError converts a transport-level failure into a
// RequestError, distinguishing deadline expiry from other network faults.
func ClassifyTransportError(err error) *RequestError {
	kind := KindNetworkError

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}

	return &RequestError{Kind: kind, cause: err}
}

// ErrorResponse represents a standardised JSON error response
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

// JsonError writes a JSON error response with the specified status code
func JsonError(w http.ResponseWriter, message string, code int) {
	response := ErrorResponse{
		Error: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("Failed to encode error response")
		http.Error(w, "{\"error\":\"Internal Server Error\"}", http.StatusInternalServerError)
		return
	}
}

// JsonErrorWithDetails writes a detailed JSON error response with optional description and URI
func JsonErrorWithDetails(w http.ResponseWriter, code int, err ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(err); err != nil {
		log.Error().Err(err).Msg("Failed to encode detailed error response")
		http.Error(w, "{\"error\":\"Internal Server Error\"}", http.StatusInternalServerError)
		return
	}
}
