package upload

import (
	"errors"
	"fmt"
	"net/http"

	"ikit/internal/services"
)

// kindError is a sentinel that also carries a services marker so callers can
// classify upload failures without importing this package.
type kindError struct {
	msg    string
	marker error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.marker }

var (
	// ErrInvalidRequest marks requests rejected before anything is sent.
	ErrInvalidRequest error = &kindError{msg: "upload: invalid request", marker: services.ErrValidation}
	// ErrNetwork marks transport failures where no response was received.
	ErrNetwork error = &kindError{msg: "upload: network error", marker: services.ErrTransient}
	// ErrAborted marks uploads stopped by context cancellation.
	ErrAborted error = &kindError{msg: "upload: aborted", marker: services.ErrTransient}
)

const genericServerMessage = "Server error occurred while uploading the file. This is rare and usually temporary."

// ResponseMetadata describes the HTTP response behind a result or error.
type ResponseMetadata struct {
	StatusCode int
	RequestID  string
	Headers    http.Header
}

// ServerError is returned when the upload API answers with a non-2xx status
// or an unreadable body.
type ServerError struct {
	Message  string
	Body     []byte
	Metadata ResponseMetadata
}

func (e *ServerError) Error() string {
	if e.Metadata.RequestID != "" {
		return fmt.Sprintf("upload: server returned %d: %s (request id %s)", e.Metadata.StatusCode, e.Message, e.Metadata.RequestID)
	}
	return fmt.Sprintf("upload: server returned %d: %s", e.Metadata.StatusCode, e.Message)
}

// Unwrap classifies client-side rejections (4xx) as validation failures and
// everything else as external service failures.
func (e *ServerError) Unwrap() error {
	if e.Metadata.StatusCode >= 400 && e.Metadata.StatusCode < 500 {
		return services.ErrValidation
	}
	return services.ErrExternal
}

func invalid(message string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, message)
}

// RequestIDOf returns the server request ID carried by err, if any.
func RequestIDOf(err error) string {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Metadata.RequestID
	}
	return ""
}
