package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrMissingToken is returned when the client is constructed without
	// an API token. This is fatal: no request is ever issued without one.
	ErrMissingToken = errors.New("api token is required")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a 2xx response whose body could not be
	// parsed as the expected JSON.
	ErrorClassDecode ErrorClass = "decode"

	// ErrorClassOther represents unexpected non-error statuses treated as
	// failures, such as an unfollowed redirect.
	ErrorClassOther ErrorClass = "other"
)

// Classify categorizes an HTTP status code for observability and handling.
func Classify(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassOther
	}
}

// APIError is the explicit failure variant for a single fetch. The crawler
// treats any APIError below the traversal engine as "this node is absent
// for the run", never as fatal.
type APIError struct {
	URL        string
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("courtlistener %s error fetching %s: %v",
			e.Class, e.URL, e.Err)
	}
	return fmt.Sprintf("courtlistener %s error (status %d) fetching %s: %s",
		e.Class, e.StatusCode, e.URL, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an APIError for a 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
