// Package domain provides the result shapes and canonical error types
// shared between the API client and its consumers.
package domain

import (
	"fmt"
	"net/http"
)

// ErrorKind categorizes an APIError. Every failed call resolves to
// exactly one kind; callers can branch on it without string matching.
type ErrorKind string

const (
	// KindTimeout indicates the call's deadline elapsed before a
	// response arrived.
	KindTimeout ErrorKind = "timeout"

	// KindConnect indicates the remote host could not be reached
	// (connection refused, DNS failure).
	KindConnect ErrorKind = "connect"

	// KindNetwork indicates any other pre-response transport failure.
	KindNetwork ErrorKind = "network"

	// KindServer indicates a response was received with a failing
	// status code.
	KindServer ErrorKind = "server"

	// KindMalformed indicates a success response whose body did not
	// decode into the declared result shape.
	KindMalformed ErrorKind = "malformed"
)

// Stable user-facing messages for transport-level failures. The exact
// wording is part of the consumer contract: UI callers render these
// strings directly.
const (
	MsgTimeout   = "Request timeout - server may be unavailable"
	MsgConnect   = "Network error - cannot connect to server"
	MsgNetwork   = "Network error or server unavailable"
	MsgMalformed = "Malformed response from server"
)

// APIError is the single failure value surfaced by the API client.
// Status is 0 for anything that failed before a response was received;
// otherwise it carries the HTTP status code. RawBody holds the parsed
// JSON error body when the server supplied one, for diagnostic display.
type APIError struct {
	Kind    ErrorKind      `json:"kind"`
	Status  int            `json:"status"`
	Message string         `json:"message"`
	RawBody map[string]any `json:"raw_body,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ErrTimeout creates the deadline-elapsed error.
func ErrTimeout() *APIError {
	return &APIError{Kind: KindTimeout, Message: MsgTimeout}
}

// ErrConnect creates the host-unreachable error.
func ErrConnect() *APIError {
	return &APIError{Kind: KindConnect, Message: MsgConnect}
}

// ErrNetwork creates the unclassified transport error.
func ErrNetwork() *APIError {
	return &APIError{Kind: KindNetwork, Message: MsgNetwork}
}

// ErrMalformed creates the undecodable-success-body error.
func ErrMalformed() *APIError {
	return &APIError{Kind: KindMalformed, Message: MsgMalformed}
}

// ErrServer creates a server-reported error. When the body carried no
// usable message, message falls back to "HTTP <status>: <status text>".
func ErrServer(status int, message string, raw map[string]any) *APIError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return &APIError{Kind: KindServer, Status: status, Message: message, RawBody: raw}
}
