package entity

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a record does not exist
var ErrNotFound = errors.New("not found")

// ValidationError is returned when a payload fails a structural check:
// a missing required field, a value outside its allowed set, or map input
// that cannot be decoded into a model.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ReferenceError is returned when a fill payload or file entry refers to a
// file id that does not match the packet's files.
type ReferenceError struct {
	FileID  string
	Message string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("file %q: %s", e.FileID, e.Message)
}

// UpstreamError is a non-2xx response from the Anvil API.
type UpstreamError struct {
	StatusCode int
	URL        string
	Body       []byte
}

func (e *UpstreamError) Error() string {
	body := string(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("anvil api error: %s returned %d: %s", e.URL, e.StatusCode, body)
}
