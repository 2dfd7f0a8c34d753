package graphql

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no credential was available; the request was
	// never sent. The user must sign in first.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrEmptyResponse means the endpoint reported success but returned
	// neither data nor errors.
	ErrEmptyResponse = errors.New("no data returned from API")
)

// TransportError reports a non-success HTTP status from the endpoint.
type TransportError struct {
	StatusCode int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}

// APIError reports an error the endpoint embedded in an otherwise successful
// HTTP response. Message is the first reported message, verbatim.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}
