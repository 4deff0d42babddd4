package flow

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidForm is returned before any request when a field is blank
	ErrInvalidForm = errors.New("email and password are required")

	// ErrTransport wraps failures that never produced a server answer
	ErrTransport = errors.New("could not reach the server")

	// ErrMalformedResponse means the server answered without the fields the step needs
	ErrMalformedResponse = errors.New("unexpected response from server")

	// ErrNotLoggedIn is returned by Guard when no usable credential is stored
	ErrNotLoggedIn = errors.New("not logged in")
)

// RejectedError is an answer from the server refusing the submission
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected by server (status %d): %s", e.Status, e.Message)
}
