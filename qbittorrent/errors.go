package qbittorrent

import (
	"errors"
	"fmt"
)

// AuthFailureMessage is the only authentication failure text exposed to
// callers. Detailed causes are reported internally only.
const AuthFailureMessage = "Authentication failed. Please check your credentials."

// Common errors returned by the qBittorrent client.
var (
	// ErrMissingConfig is returned when the server URL or username is
	// absent from settings. Checked before any network call.
	ErrMissingConfig = errors.New("server URL and username must be configured")

	// ErrAuthFailed indicates the login exchange returned a non-2xx status.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrInvalidCredentials indicates the server rejected the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAuthRequired indicates the server reported a stale or expired
	// session (HTTP 401).
	ErrAuthRequired = errors.New("authentication required")

	// ErrAccessDenied indicates the server refused the operation (HTTP 403).
	ErrAccessDenied = errors.New("access denied by server")

	// ErrServerError indicates a server-side failure (HTTP 5xx).
	ErrServerError = errors.New("server error")

	// ErrRequestFailed indicates any other non-success response.
	ErrRequestFailed = errors.New("request failed")

	// ErrSubmissionFailed indicates the server accepted the request but
	// rejected the torrent.
	ErrSubmissionFailed = errors.New("torrent submission failed")
)

// AuthError wraps an authentication failure. Its message is always the
// generic AuthFailureMessage regardless of the underlying reason.
type AuthError struct {
	Reason error
}

func (e *AuthError) Error() string {
	return AuthFailureMessage
}

func (e *AuthError) Unwrap() error {
	return e.Reason
}

// APIError is a classified, sanitized API failure. The server response
// body is never included.
type APIError struct {
	StatusCode int
	Kind       error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// SubmissionError carries the raw server response for a rejected torrent.
// Unlike auth errors this text is operationally useful and not sensitive.
type SubmissionError struct {
	Response string
}

func (e *SubmissionError) Error() string {
	if e.Response == "" {
		return ErrSubmissionFailed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrSubmissionFailed, e.Response)
}

func (e *SubmissionError) Unwrap() error {
	return ErrSubmissionFailed
}
