package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Proxy failure classes. Each maps to exactly one HTTP status.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrBadRequest          = errors.New("bad request")
	ErrServerMisconfigured = errors.New("server misconfigured")
	ErrBadGateway          = errors.New("bad gateway")
)

// ProxyError is a proxy-originated failure.
type ProxyError struct {
	Kind    error
	Message string
	Details string
}

func (e *ProxyError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ProxyError) Unwrap() error {
	return e.Kind
}

// Status returns the HTTP status for the failure class.
func (e *ProxyError) Status() int {
	switch {
	case errors.Is(e.Kind, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(e.Kind, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(e.Kind, ErrBadGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// kindLabel is the log and metric label for the failure class.
func (e *ProxyError) kindLabel() string {
	switch {
	case errors.Is(e.Kind, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(e.Kind, ErrBadRequest):
		return "bad_request"
	case errors.Is(e.Kind, ErrBadGateway):
		return "bad_gateway"
	default:
		return "server_misconfigured"
	}
}

// ErrorBody is the JSON body of every proxy-originated failure.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func unauthorized() *ProxyError {
	return &ProxyError{Kind: ErrUnauthorized, Message: "Unauthorized"}
}

func badRequest(msg string) *ProxyError {
	return &ProxyError{Kind: ErrBadRequest, Message: msg}
}

func misconfigured(key string) *ProxyError {
	return &ProxyError{Kind: ErrServerMisconfigured, Message: "Missing " + key}
}

func badGateway(details string) *ProxyError {
	return &ProxyError{Kind: ErrBadGateway, Message: "Failed to reach backend", Details: details}
}

func writeProxyError(w http.ResponseWriter, e *ProxyError) {
	writeJSON(w, e.Status(), ErrorBody{Error: e.Message, Details: e.Details})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
