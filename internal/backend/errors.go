package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is a non-2xx response surfaced verbatim.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// AuthError is a failed auth endpoint call, carrying the provider's description.
type AuthError struct {
	Status      int
	Code        string
	Description string
}

func (e *AuthError) Error() string {
	if e.Description != "" {
		return e.Description
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// RPCError is a procedure that answered {success: false}; Message is the server's own text.
type RPCError struct {
	Procedure string
	Message   string
}

func (e *RPCError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Procedure + " failed"
}

// SchemaError means a 2xx response did not match the expected shape.
type SchemaError struct {
	What string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected %s response: %v", e.What, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a 401 from any endpoint.
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status == http.StatusUnauthorized
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Status == http.StatusUnauthorized
	}
	return false
}

type authErrorBody struct {
	Error            string `json:"error"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

// toAuthError converts an auth endpoint HTTPError into an AuthError.
func toAuthError(err error) error {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	out := &AuthError{Status: httpErr.Status}
	var body authErrorBody
	if json.Unmarshal([]byte(httpErr.Body), &body) == nil {
		out.Code = firstNonEmpty(body.ErrorCode, body.Error)
		out.Description = firstNonEmpty(body.ErrorDescription, body.Msg, body.Message)
	}
	if out.Description == "" && out.Code == "" {
		out.Description = httpErr.Error()
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
