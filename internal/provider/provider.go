// Package provider holds the error type shared by the external data sources
// (weather and news) consumed by a summary run.
package provider

import (
	"errors"
	"fmt"
)

const (
	Weather = "weather"
	News    = "news"
)

// Error classifies a failed provider call: network error, non-2xx status,
// or a payload that does not match the expected schema.
type Error struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an Error for the named provider.
func Errorf(name, format string, args ...any) *Error {
	return &Error{Provider: name, Err: fmt.Errorf(format, args...)}
}

// StatusError builds an Error for an unexpected HTTP status.
func StatusError(name string, status int, body string) *Error {
	msg := "unexpected status"
	if body != "" {
		msg = body
	}
	return &Error{Provider: name, StatusCode: status, Err: errors.New(msg)}
}

// Is reports whether err is a provider error for the named provider.
func Is(err error, name string) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Provider == name
}
