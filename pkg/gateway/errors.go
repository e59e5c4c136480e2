package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the remote service's failure modes. Callers match with
// errors.Is; the underlying HTTPError is preserved in the chain for
// diagnostics.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrValidation         = errors.New("validation failed")
	ErrFileTooLarge       = errors.New("file too large")
	ErrInvalidFileType    = errors.New("invalid file type")
)

// HTTPError captures an unexpected status code and response body from the
// remote service.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, string(e.Body))
}

// statusError maps a non-2xx response to the error taxonomy.
func statusError(status int, body []byte) error {
	httpErr := &HTTPError{StatusCode: status, Body: body}

	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %w", ErrValidation, httpErr)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrUnauthenticated, httpErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, httpErr)
	case http.StatusConflict:
		return fmt.Errorf("%w: %w", ErrAlreadyExists, httpErr)
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %w", ErrFileTooLarge, httpErr)
	case http.StatusUnsupportedMediaType:
		return fmt.Errorf("%w: %w", ErrInvalidFileType, httpErr)
	}

	return httpErr
}
