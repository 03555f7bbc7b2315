// Package apperr defines the error taxonomy shared by the moment pipeline.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the pipeline reacts to it.
type Kind string

const (
	// KindFetch: one source unreachable or malformed. The source is excluded.
	KindFetch Kind = "fetch"
	// KindAnnotation: one item could not be analyzed. Recovered with a fallback.
	KindAnnotation Kind = "annotation"
	// KindInvalidInput: a stage was called with input it refuses. Fatal.
	KindInvalidInput Kind = "invalid_input"
	// KindNoContent: no source produced any record. Fatal.
	KindNoContent Kind = "no_content"
	// KindStorage: the store step failed. Fatal, rankings survive.
	KindStorage Kind = "storage"
)

// Error carries a Kind, the component or source it came from, and the cause.
type Error struct {
	Kind    Kind
	Source  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Source != "" {
		msg += " [" + e.Source + "]"
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Fetch(source, reason string, cause error) *Error {
	return &Error{Kind: KindFetch, Source: source, Message: reason, Cause: cause}
}

func Fetchf(source, format string, args ...any) *Error {
	return &Error{Kind: KindFetch, Source: source, Message: fmt.Sprintf(format, args...)}
}

func Annotation(recordID string, cause error) *Error {
	return &Error{Kind: KindAnnotation, Source: recordID, Message: "failed to analyze", Cause: cause}
}

func InvalidInput(component, message string) *Error {
	return &Error{Kind: KindInvalidInput, Source: component, Message: message}
}

func NoContent(message string) *Error {
	return &Error{Kind: KindNoContent, Message: message}
}

func Storage(message string, cause error) *Error {
	return &Error{Kind: KindStorage, Source: "store", Message: message, Cause: cause}
}

// Is reports whether err, or anything it wraps, is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
