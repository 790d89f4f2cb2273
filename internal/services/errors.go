package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownRole         = errors.New("unknown job role")
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrEmptyDocument       = errors.New("document has no extractable text")
	ErrInvocation          = errors.New("model invocation failed")
	ErrNoJSONFound         = errors.New("no JSON object found")
	ErrInvalidJSON         = errors.New("invalid JSON object")
)

// InvocationError is returned by every ModelInvoker when the model could not
// produce text for a prompt.
type InvocationError struct {
	Provider  string
	Retryable bool
	Err       error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s invocation failed: %v", e.Provider, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

func (e *InvocationError) Is(target error) bool {
	return target == ErrInvocation
}

type ParseErrorKind int

const (
	NoJSONFound ParseErrorKind = iota + 1
	InvalidJSON
)

func (k ParseErrorKind) String() string {
	switch k {
	case NoJSONFound:
		return "NoJsonFound"
	case InvalidJSON:
		return "InvalidJson"
	default:
		return "Unknown"
	}
}

// ParseError keeps the raw model output so the caller can show it.
type ParseError struct {
	Kind ParseErrorKind
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ParseError: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ParseError: %s", e.Kind)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	switch e.Kind {
	case NoJSONFound:
		return target == ErrNoJSONFound
	case InvalidJSON:
		return target == ErrInvalidJSON
	}
	return false
}
