package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a blank URL, body or domain list reaches
	// an operation that needs a value
	ErrEmptyInput = errors.New("empty input")

	// ErrInsufficientContent is returned by content scoring when either body
	// carries no text
	ErrInsufficientContent = errors.New("insufficient content")
)

// FetchError describes a failed retrieval of one URL
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError describes a hostname, URL or document that could not be parsed
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ComputationError describes a similarity computation that could not finish
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// DiagnosticFor maps a contained error onto a report diagnostic
func DiagnosticFor(subject string, err error) Diagnostic {
	kind := DiagnosticComputationFailure

	var fetchErr *FetchError
	var parseErr *ParseError
	switch {
	case errors.As(err, &fetchErr):
		kind = DiagnosticFetchFailure
	case errors.As(err, &parseErr):
		kind = DiagnosticParseFailure
	}

	return Diagnostic{
		Kind:    kind,
		Subject: subject,
		Message: err.Error(),
	}
}
