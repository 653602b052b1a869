package service

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized means the server rejected (or did not receive) the credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials means a login attempt was rejected.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrTitleRequired means a draft was submitted without a title.
	ErrTitleRequired = errors.New("title required")

	// ErrInvalidID means a task id cannot name a single task resource.
	ErrInvalidID = errors.New("invalid task id")
)

// RequestFailedError is any failure other than ErrUnauthorized: transport errors,
// validation errors and server errors.
type RequestFailedError struct {
	// Status is the HTTP status code, or 0 if no response was received.
	Status int

	// Detail is the server's error message, if it sent one.
	Detail string

	// Fields holds per-field validation messages, if the server sent them.
	Fields map[string][]string

	// Err is the underlying error.
	Err error
}

func (e *RequestFailedError) Error() string {
	var b strings.Builder
	if e.Status == 0 {
		b.WriteString("request failed")
	} else {
		fmt.Fprintf(&b, "request failed: %d %s", e.Status, http.StatusText(e.Status))
	}

	switch {
	case e.Detail != "":
		b.WriteString(": ")
		b.WriteString(e.Detail)
	case len(e.Fields) > 0:
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for i, name := range names {
			if i == 0 {
				b.WriteString(": ")
			} else {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%s: %s", name, strings.Join(e.Fields[name], " "))
		}
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

// IsValidation reports whether the server rejected the request body.
func (e *RequestFailedError) IsValidation() bool {
	return e.Status == http.StatusBadRequest
}

// IsUnauthorized reports whether err is (or wraps) ErrUnauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// AsRequestFailed returns the *RequestFailedError in err's chain, if any.
func AsRequestFailed(err error) (*RequestFailedError, bool) {
	var rf *RequestFailedError
	if errors.As(err, &rf) {
		return rf, true
	}
	return nil, false
}

// IsNotFound reports whether err is a request failure with status 404.
func IsNotFound(err error) bool {
	rf, ok := AsRequestFailed(err)
	return ok && rf.Status == http.StatusNotFound
}
